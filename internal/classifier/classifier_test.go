package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParseResponse(t *testing.T) {
	t.Run("fenced multi-order reply", func(t *testing.T) {
		reply := "```json\n" + `{
			"es_pedido": true,
			"pedidos": [
				{"prioridad": "ALTA", "fecha_solicitada": "2025-03-01", "hora_solicitada": "20:00", "resumen_items": "1 pizza"},
				{"prioridad": "media", "fecha_solicitada": "mañana", "hora_solicitada": "8pm", "resumen_items": " 2 hamburguesas "},
				{"prioridad": "baja", "resumen_items": ""}
			]
		}` + "\n```"
		c, err := ParseResponse(reply)
		require.NoError(t, err)
		assert.True(t, c.IsOrder)
		require.Len(t, c.Orders, 2, "proposal without summary is dropped")

		assert.Equal(t, "alta", c.Orders[0].Priority)
		require.NotNil(t, c.Orders[0].RequestedDate)
		assert.Equal(t, "2025-03-01", *c.Orders[0].RequestedDate)
		assert.Equal(t, "20:00", *c.Orders[0].RequestedTime)

		assert.Equal(t, "2 hamburguesas", c.Orders[1].ItemSummary)
		assert.Nil(t, c.Orders[1].RequestedDate, "invalid date becomes nil")
		assert.Nil(t, c.Orders[1].RequestedTime, "invalid time becomes nil")
	})

	t.Run("casual conversation", func(t *testing.T) {
		c, err := ParseResponse(`{"es_pedido": false, "pedidos": []}`)
		require.NoError(t, err)
		assert.False(t, c.IsOrder)
		assert.Empty(t, c.Orders)
	})

	t.Run("order flag without proposals", func(t *testing.T) {
		c, err := ParseResponse("```\n{\"es_pedido\": true, \"pedidos\": []}\n```")
		require.NoError(t, err)
		assert.False(t, c.IsOrder)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseResponse("Claro, aquí tienes: {es_pedido: true")
		assert.ErrorIs(t, err, ErrMalformedResponse)

		_, err = ParseResponse(`{"pedidos": []}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)

		_, err = ParseResponse("   ")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2025, 12, 30, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "hoy", HumanDate("2025-12-30", now))
	assert.Equal(t, "mañana", HumanDate("2025-12-31", now))
	assert.Equal(t, "pasado mañana", HumanDate("2026-01-01", now))
	assert.Equal(t, "26/12/2025", HumanDate("2025-12-26", now))
	assert.Equal(t, "02/01/2026", HumanDate("2026-01-02", now))
	assert.Equal(t, "pronto", HumanDate("pronto", now))
	assert.Equal(t, "", HumanDate("", now))
}

func TestSystemPromptAnchorsDates(t *testing.T) {
	now := time.Date(2025, 12, 31, 9, 30, 0, 0, time.UTC)
	p := classificationPrompt(now, "quiero 2 cafés")

	assert.Contains(t, p, "FECHA Y HORA ACTUAL: 2025-12-31 09:30")
	assert.Contains(t, p, "- HOY es: 2025-12-31")
	assert.Contains(t, p, "- MAÑANA es: 2026-01-01")
	assert.Contains(t, p, "- PASADO MAÑANA es: 2026-01-02")
	assert.True(t, strings.HasSuffix(p, "Mensaje a analizar:\nquiero 2 cafés"))
	assert.NotContains(t, p, "%!", "format verbs must all be consumed")
}

type genCall struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

func stubGemini(reply string, err error, calls *[]genCall) *Gemini {
	g := newGemini("", func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
		*calls = append(*calls, genCall{model: model, contents: contents, cfg: cfg})
		return reply, err
	})
	g.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestGemini_Classify(t *testing.T) {
	var calls []genCall
	g := stubGemini(`{"es_pedido": true, "pedidos": [{"prioridad": "alta", "resumen_items": "pan"}]}`, nil, &calls)
	assert.Equal(t, DefaultModel, g.Model())

	c, err := g.Classify(context.Background(), "quiero pan")
	require.NoError(t, err)
	assert.True(t, c.IsOrder)
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultModel, calls[0].model)
	require.NotNil(t, calls[0].cfg)
	assert.Equal(t, "application/json", calls[0].cfg.ResponseMIMEType)
	require.Len(t, calls[0].contents, 1)
	assert.Contains(t, calls[0].contents[0].Parts[0].Text, "Mensaje a analizar:\nquiero pan")

	calls = nil
	bad := stubGemini("no json", nil, &calls)
	_, err = bad.Classify(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	boom := errors.New("quota exceeded")
	failing := stubGemini("", boom, &calls)
	_, err = failing.Classify(context.Background(), "hola")
	assert.ErrorIs(t, err, boom)
}

func TestGemini_Transcribe(t *testing.T) {
	var calls []genCall
	g := stubGemini("  quiero dos empanadas \n", nil, &calls)

	text, err := g.Transcribe(context.Background(), []byte{1, 2, 3}, "")
	require.NoError(t, err)
	assert.Equal(t, "quiero dos empanadas", text)

	require.Len(t, calls, 1)
	parts := calls[0].contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, transcriptionPrompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "audio/ogg", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, parts[1].InlineData.Data)

	empty := stubGemini("   ", nil, &calls)
	_, err = empty.Transcribe(context.Background(), []byte{1}, "audio/ogg")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ñá...", truncate("ñáé", 2))
}
