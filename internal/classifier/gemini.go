package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// generateFn is the seam between Gemini and the SDK client.
type generateFn func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

// Gemini implements Classifier and Transcriber on the Gemini API.
type Gemini struct {
	model    string
	generate generateFn
	now      func() time.Time
}

// NewGemini creates a Gemini API client for apiKey. An empty model selects
// DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	gen := func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return newGemini(model, gen), nil
}

func newGemini(model string, gen generateFn) *Gemini {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Gemini{model: model, generate: gen, now: time.Now}
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// Classify asks the model whether text contains orders.
func (g *Gemini) Classify(ctx context.Context, text string) (*Classification, error) {
	ctx, span := otel.Tracer("classifier/Gemini").Start(ctx, "Classify",
		trace.WithAttributes(attribute.String("model", g.model), attribute.Int("text.len", len(text))),
	)
	defer span.End()

	contents := genai.Text(classificationPrompt(g.now(), text))
	out, err := g.generate(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	c, err := ParseResponse(out)
	if err != nil {
		log.Warn().Err(err).Str("reply", truncate(out, 200)).Msg("classifier reply rejected")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("es_pedido", c.IsOrder), attribute.Int("pedidos", len(c.Orders)))
	return c, nil
}

// Transcribe converts a voice note to Spanish text.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx, span := otel.Tracer("classifier/Gemini").Start(ctx, "Transcribe",
		trace.WithAttributes(attribute.Int("audio.bytes", len(audio))),
	)
	defer span.End()

	if mimeType == "" {
		mimeType = "audio/ogg"
	}
	parts := []*genai.Part{
		genai.NewPartFromText(transcriptionPrompt),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	out, err := g.generate(ctx, g.model, contents, nil)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
