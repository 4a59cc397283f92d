package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type rawProposal struct {
	Priority      *string `json:"prioridad"`
	RequestedDate *string `json:"fecha_solicitada"`
	RequestedTime *string `json:"hora_solicitada"`
	ItemSummary   *string `json:"resumen_items"`
}

type rawClassification struct {
	IsOrder *bool         `json:"es_pedido"`
	Orders  []rawProposal `json:"pedidos"`
}

// ParseResponse decodes a model reply. Markdown code fences are stripped.
// Invalid dates or times become nil; proposals without an item summary are
// dropped. A reply that is not JSON, or lacks es_pedido, yields
// ErrMalformedResponse.
func ParseResponse(text string) (*Classification, error) {
	body := stripFences(text)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.IsOrder == nil {
		return nil, fmt.Errorf("%w: missing es_pedido", ErrMalformedResponse)
	}

	out := &Classification{IsOrder: *raw.IsOrder}
	if !out.IsOrder {
		return out, nil
	}
	for _, p := range raw.Orders {
		summary := strings.TrimSpace(str(p.ItemSummary))
		if summary == "" {
			continue
		}
		out.Orders = append(out.Orders, Proposal{
			Priority:      strings.ToLower(strings.TrimSpace(str(p.Priority))),
			RequestedDate: validated(p.RequestedDate, dateLayout),
			RequestedTime: validated(p.RequestedTime, clockLayout),
			ItemSummary:   summary,
		})
	}
	if len(out.Orders) == 0 {
		out.IsOrder = false
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// validated returns a normalized copy of v when it parses with layout.
func validated(v *string, layout string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	n := t.Format(layout)
	return &n
}
