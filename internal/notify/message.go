package notify

import (
	"fmt"
	"strings"
)

// Subject is the notification subject line, keyed by the short ticket id.
func Subject(n Notification) string {
	id := n.TicketID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Status do Ticket #%s", id)
}

// Body renders the outcome message sent to the requester. The text follows
// the warranty team's Portuguese template.
func Body(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s,\n\n", n.FullName)
	b.WriteString("Seu ticket de troca de aparelho foi processado.\n\n")
	fmt.Fprintf(&b, "ID do Ticket: %s\n", n.TicketID)
	fmt.Fprintf(&b, "Status: %s\n", statusLabel(n))
	if n.Reason != "" {
		fmt.Fprintf(&b, "Motivo: %s\n", n.Reason)
	}
	fmt.Fprintf(&b, "\nAparelho: %s\n", n.Device)
	fmt.Fprintf(&b, "Número de Série: %s\n", n.SerialNumber)
	fmt.Fprintf(&b, "Data de Abertura: %s\n", n.IntakeTime.Format("02/01/2006 15:04"))
	b.WriteString("\nEm caso de dúvidas, entre em contato conosco.\n\nAtenciosamente,\nEquipe de Garantia\n")
	return b.String()
}

func statusLabel(n Notification) string {
	switch n.Status {
	case "accepted":
		return "ACEITO"
	case "rejected":
		return "REJEITADO"
	}
	return strings.ToUpper(string(n.Status))
}
