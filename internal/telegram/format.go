package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/pedidos-backend/internal/classifier"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

const helpText = "¡Hola! 👋\n\n" +
	"Soy un bot de gestión de pedidos.\n" +
	"Puedes escribirme tus pedidos y los procesaré automáticamente.\n\n" +
	"Comandos disponibles:\n" +
	"/start - Mostrar este mensaje\n" +
	"/stats - Ver estadísticas\n" +
	"/pendientes - Ver pedidos pendientes"

const (
	msgAnalyzing           = "Analizando tu mensaje... 🤔"
	msgAnalyzeFailed       = "❌ Hubo un error al analizar tu mensaje. Por favor, intenta de nuevo."
	msgNotAnOrder          = "Entendido. Si necesitas hacer un pedido, déjame saber qué necesitas. 😊"
	msgTranscribing        = "🎤 Transcribiendo tu mensaje de voz..."
	msgVoiceDownloadFailed = "❌ Error al descargar el mensaje de voz. Por favor, intenta nuevamente."
	msgTranscriptionFailed = "❌ No pude transcribir el mensaje de voz. Por favor, intenta enviar un mensaje de texto."
	msgGenericError        = "❌ Ocurrió un error. Por favor, intenta más tarde."
	msgUpdateFailed        = "❌ No se pudo actualizar el pedido. Por favor, intenta más tarde."
	msgNoPending           = "✅ No hay pedidos pendientes en este momento.\n" +
		"Puedes crear uno enviándome un mensaje con tu pedido."

	promptSingle = "\n\n⚠️ Por favor, confirma o cancela este pedido:"
	promptBulk   = "\n\n⚠️ Por favor, confirma o cancela todos los pedidos:"
)

func voiceUnanalyzed(transcript string) string {
	return fmt.Sprintf("🎤 Mensaje de voz transcrito:\n\n\"%s\"\n\n⚠️ No pude analizar el contenido. Se guardó como mensaje normal.", transcript)
}

func voiceNotAnOrder(transcript string) string {
	return fmt.Sprintf("🎤 Mensaje de voz recibido:\n\n\"%s\"\n\n💬 Entendido. Si necesitas hacer un pedido, déjame saber. 😊", transcript)
}

func formatStats(st *services.CustomerStats) string {
	return fmt.Sprintf("📊 Estadísticas del Bot\n\n"+
		"📝 Total mensajes: %d\n"+
		"🛒 Total pedidos: %d\n\n"+
		"⏳ Por confirmar: %d\n"+
		"✅ Confirmados: %d\n"+
		"❌ Cancelados: %d",
		st.Messages, st.Orders, st.Pending, st.Confirmed, st.Cancelled)
}

// when renders the requested date and time lines of an order.
func when(date, clock *string, now time.Time) string {
	switch {
	case date != nil && clock != nil:
		return fmt.Sprintf("📅 Para: %s a las %s\n", classifier.HumanDate(*date, now), *clock)
	case date != nil:
		return fmt.Sprintf("📅 Para: %s\n", classifier.HumanDate(*date, now))
	case clock != nil:
		return fmt.Sprintf("🕐 Hora: %s\n", *clock)
	}
	return ""
}

var pendingGroups = []struct {
	state   domain.State
	heading string
}{
	{domain.StatePending, "⏳ POR CONFIRMAR:"},
	{domain.StateConfirmed, "✅ CONFIRMADOS:"},
	{domain.StateInPreparation, "🔄 EN PREPARACIÓN:"},
	{domain.StateReady, "🎉 LISTOS PARA RECOGER:"},
}

func formatPending(orders []domain.Order, now time.Time) string {
	if len(orders) == 0 {
		return msgNoPending
	}
	var sb strings.Builder
	sb.WriteString("📋 TUS PEDIDOS\n\n")
	for _, g := range pendingGroups {
		first := true
		for _, o := range orders {
			if o.State != g.state {
				continue
			}
			if first {
				sb.WriteString(g.heading + "\n")
				first = false
			}
			fmt.Fprintf(&sb, "\n🔢 Pedido #%d\n📦 %s\n⚡ Prioridad: %s\n", o.ID, o.ItemSummary, o.Priority.Label())
			sb.WriteString(when(o.RequestedDate, o.RequestedTime, now))
		}
		if !first {
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "📊 Total: %d pedidos", len(orders))
	return sb.String()
}

// formatRegistered is the reply after intake stored orders. transcript is
// set for voice notes.
func formatRegistered(orders []domain.Order, transcript string, now time.Time) string {
	var sb strings.Builder
	multi := len(orders) > 1
	if multi {
		fmt.Fprintf(&sb, "✅ ¡%d pedidos registrados", len(orders))
	} else {
		sb.WriteString("✅ ¡Pedido registrado")
	}
	if transcript != "" {
		sb.WriteString(" desde mensaje de voz")
	}
	sb.WriteString(" correctamente!\n\n")
	if transcript != "" {
		fmt.Fprintf(&sb, "📝 Transcripción: \"%s\"\n\n", transcript)
	}

	for i, o := range orders {
		if multi {
			fmt.Fprintf(&sb, "PEDIDO #%d:\n", i+1)
		}
		fmt.Fprintf(&sb, "📦 Resumen: %s\n⚡ Prioridad: %s\n", o.ItemSummary, o.Priority.Label())
		sb.WriteString(when(o.RequestedDate, o.RequestedTime, now))
		fmt.Fprintf(&sb, "🔢 ID del pedido: %d\n", o.ID)
		if multi && i < len(orders)-1 {
			sb.WriteString("\n")
		}
	}
	if multi {
		sb.WriteString(promptBulk)
	} else {
		sb.WriteString(promptSingle)
	}
	return sb.String()
}

func confirmKeyboard(orders []domain.Order) tgbotapi.InlineKeyboardMarkup {
	if len(orders) == 1 {
		id := strconv.FormatUint(uint64(orders[0].ID), 10)
		return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirmar Pedido", "confirmar_"+id),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancelar Pedido", "cancelar_"+id),
		))
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = strconv.FormatUint(uint64(o.ID), 10)
	}
	joined := strings.Join(ids, ",")
	n := len(orders)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ Confirmar Todos (%d)", n), "confirmar_todos_"+joined),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ Cancelar Todos (%d)", n), "cancelar_todos_"+joined),
	))
}

// resolvedText swaps the confirmation prompt for the outcome so the
// buttons disappear with the edit.
func resolvedText(original string, a callbackAction, done int) string {
	var outcome string
	switch {
	case a.bulk && a.state == domain.StateConfirmed:
		outcome = fmt.Sprintf("\n\n✅ TODOS LOS PEDIDOS CONFIRMADOS (%d)", done)
	case a.bulk:
		outcome = fmt.Sprintf("\n\n❌ TODOS LOS PEDIDOS CANCELADOS (%d)", done)
	case a.state == domain.StateConfirmed:
		outcome = "\n\n✅ PEDIDO CONFIRMADO"
	default:
		outcome = "\n\n❌ PEDIDO CANCELADO"
	}
	prompt := promptSingle
	if a.bulk {
		prompt = promptBulk
	}
	if strings.Contains(original, prompt) {
		return strings.Replace(original, prompt, outcome, 1)
	}
	return original + outcome
}
