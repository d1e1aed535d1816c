package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/recall/internal/event"
)

const stampLayout = "Mon 2006-01-02 15:04:05"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Message bodies from chat and code review.
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// ConsoleRenderer prints one block per event. Interactive output is styled
// and puts message bodies in a bordered panel.
type ConsoleRenderer struct {
	Interactive bool
}

func (r *ConsoleRenderer) Render(t *Timeline) ([]byte, error) {
	var sb strings.Builder

	header := fmt.Sprintf("--- Summarized Activity Timeline for %s ---", t.Date.Format(time.DateOnly))
	if r.Interactive {
		header = headerStyle.Render(header)
	}
	sb.WriteString("\n" + header + "\n\n")

	for _, e := range t.Events {
		e.Timestamp = e.Timestamp.In(t.Date.Location())
		r.writeEvent(&sb, e)
	}
	return []byte(sb.String()), nil
}

func (r *ConsoleRenderer) writeEvent(sb *strings.Builder, e event.Event) {
	stamp := "[" + e.Timestamp.Format(stampLayout) + "]"
	source := "[" + e.Source + "]"
	if !r.Interactive {
		fmt.Fprintf(sb, "%s %s %s%s\n", stamp, source, strings.TrimSpace(e.Description), durationSuffix(e))
		if e.URL != "" {
			fmt.Fprintf(sb, "↳ %s\n", e.URL)
		}
		sb.WriteString("\n")
		return
	}

	stamp, source = timeStyle.Render(stamp), sourceStyle.Render(source)
	if head, body, ok := splitMessage(e.Description); ok {
		fmt.Fprintf(sb, "%s %s %s%s\n", stamp, source, head, durationSuffix(e))
		sb.WriteString(panelStyle.Render(body) + "\n")
	} else {
		fmt.Fprintf(sb, "%s %s %s%s\n", stamp, source, strings.TrimSpace(e.Description), durationSuffix(e))
	}
	if e.URL != "" {
		sb.WriteString(urlStyle.Render("↳ "+e.URL) + "\n")
	}
	sb.WriteString("\n")
}

// splitMessage separates a "Message in ..." or "Commented on ..." header
// from its body at the first blank line.
func splitMessage(desc string) (head, body string, ok bool) {
	if !strings.Contains(desc, "Message in") && !strings.Contains(desc, "Commented on") {
		return "", "", false
	}
	head, body, ok = strings.Cut(desc, "\n\n")
	if !ok {
		return "", "", false
	}
	return head, strings.TrimRight(body, "\n"), true
}
