package render

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MarkdownRenderer renders a Timeline as a Markdown report.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(t *Timeline) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Activity for %s\n\n", t.Date.Format("Monday, 2006-01-02"))

	// ## Summary
	sb.WriteString("## Summary\n\n")
	if len(t.Events) == 0 {
		sb.WriteString("_No activity recorded._\n\n")
		return []byte(sb.String()), nil
	}
	counts := map[string]int{}
	for _, e := range t.Events {
		counts[e.Source]++
	}
	sources := make([]string, 0, len(counts))
	for s := range counts {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	sb.WriteString("| Source | Entries |\n")
	sb.WriteString("|--------|---------|\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "| %s | %d |\n", s, counts[s])
	}
	sb.WriteString("\n")

	// ## Timeline
	sb.WriteString("## Timeline\n\n")
	for _, e := range t.Events {
		head, body, split := strings.Cut(strings.TrimRight(e.Description, "\n"), "\n\n")
		if e.URL != "" {
			head = fmt.Sprintf("[%s](%s)", head, e.URL)
		}
		fmt.Fprintf(&sb, "- **%s** `%s` %s%s\n", e.Timestamp.In(t.Date.Location()).Format(time.TimeOnly), e.Source, head, durationSuffix(e))
		if split {
			for _, line := range strings.Split(body, "\n") {
				fmt.Fprintf(&sb, "  > %s\n", line)
			}
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}
