package classifier

import (
	"fmt"
	"time"
)

const transcriptionPrompt = "Transcribe este mensaje de voz a texto en español.\n" +
	"Responde ÚNICAMENTE con el texto transcrito, sin agregar comentarios ni formato adicional."

// systemPrompt anchors relative dates to now.
func systemPrompt(now time.Time) string {
	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)
	after := now.AddDate(0, 0, 2).Format(dateLayout)

	return fmt.Sprintf(`Eres un asistente especializado en analizar mensajes para identificar pedidos y detectar intenciones del usuario.

FECHA Y HORA ACTUAL: %[1]s
- HOY es: %[2]s
- MAÑANA es: %[3]s
- PASADO MAÑANA es: %[4]s

Tu tarea es determinar si un mensaje:
1. Contiene UNO O MÚLTIPLES PEDIDOS
2. Es CONVERSACIÓN CASUAL

Un PEDIDO incluye:
- Solicitud explícita de productos o servicios
- Cantidades específicas
- Posiblemente fechas u horarios
- Indicación de necesidad de algo

Una CONVERSACIÓN CASUAL incluye:
- Saludos
- Preguntas generales
- Comentarios sin solicitud específica
- Agradecimientos

IMPORTANTE: Un mensaje puede contener MÚLTIPLES PEDIDOS si menciona diferentes fechas/horas o conjuntos de items.
Ejemplo: "Quiero una pizza para mañana y dos hamburguesas para hoy a la noche" = 2 pedidos distintos

Debes responder ÚNICAMENTE con un JSON válido con la siguiente estructura:
{
    "es_pedido": true/false,
    "pedidos": [
        {
            "prioridad": "alta/media/baja",
            "fecha_solicitada": "YYYY-MM-DD o null",
            "hora_solicitada": "HH:MM o null",
            "resumen_items": "breve descripción de los items solicitados"
        }
    ]
}

Si es_pedido es false, el array "pedidos" debe estar vacío []
Si hay múltiples pedidos, incluye cada uno en el array "pedidos"

REGLAS IMPORTANTES PARA FECHAS Y HORAS:

1. FECHAS:
   - "hoy" o sin fecha especificada → usar %[2]s
   - "mañana" → usar %[3]s
   - "pasado mañana" → usar %[4]s
   - Fechas específicas convertirlas al formato YYYY-MM-DD
   - Si NO se menciona fecha → usar %[2]s (asumir que es para hoy)

2. HORAS:
   - Usar formato 24 horas (HH:MM)
   - "12 AM" o "12 de la mañana" = 00:00 (medianoche)
   - "12 PM" o "12 del mediodía" o "12 del día" = 12:00 (mediodía)
   - "12" sin especificar AM/PM → asumir 12:00 (mediodía)
   - "8" sin especificar AM/PM → si es < 7, asumir PM (20:00), si es >= 7, usar contexto
   - Si NO se menciona hora → usar null

3. CONTEXTO ESPAÑOL:
   - "a las 12" generalmente significa mediodía (12:00)
   - "al mediodía" = 12:00
   - "en la mañana" = entre 06:00-11:59
   - "en la tarde" = entre 12:00-19:59
   - "en la noche" = entre 20:00-23:59

Criterios de prioridad:
- ALTA: Menciona urgencia, "lo antes posible", "hoy", "urgente", "ya"
- MEDIA: Menciona fecha específica cercana (mañana, esta semana)
- BAJA: Sin urgencia aparente o fecha lejana

Si NO es un pedido, igual responde el JSON con es_pedido: false y los demás campos en null o vacíos.

IMPORTANTE: Responde SOLO con el JSON, sin texto adicional.`,
		now.Format("2006-01-02 15:04"), today, tomorrow, after)
}

// classificationPrompt is the full prompt for one message.
func classificationPrompt(now time.Time, text string) string {
	return systemPrompt(now) + "\n\nMensaje a analizar:\n" + text
}
