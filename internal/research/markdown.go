package research

import (
	"fmt"
	"strings"

	"github.com/mrz1836/scout/internal/constants"
)

// Markdown renders the report as a Markdown document: title, summary, key
// findings, the outline in order and a list of sources.
func Markdown(r Report) string {
	var b strings.Builder

	title := r.Topic
	if title == "" {
		title = "Untitled research"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if r.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Summary)
	}

	if len(r.KeyFindings) > 0 {
		b.WriteString("## Key findings\n\n")
		for _, f := range r.KeyFindings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	for _, s := range r.Sections {
		heading := s.Title
		if heading == "" {
			heading = sectionFallbackTitle(s.Type)
		}
		fmt.Fprintf(&b, "## %s\n\n", heading)
		if s.Content != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Content)
		}
		for _, img := range s.Images {
			fmt.Fprintf(&b, "![](%s)\n", img)
		}
		if len(s.Images) > 0 {
			b.WriteString("\n")
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("## Sources\n\n")
		for _, n := range r.Notes {
			label := n.Title
			if label == "" {
				label = n.ID
			}
			if n.URL != "" {
				fmt.Fprintf(&b, "- [%s](%s)", label, n.URL)
			} else {
				fmt.Fprintf(&b, "- %s", label)
			}
			if n.Author != "" {
				fmt.Fprintf(&b, " by %s", n.Author)
			}
			if n.Likes > 0 {
				fmt.Fprintf(&b, " (%d likes)", n.Likes)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n", r.CreatedAt.Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

func sectionFallbackTitle(t constants.SectionType) string {
	switch t {
	case constants.SectionCover:
		return "Overview"
	case constants.SectionSummary:
		return "Summary"
	default:
		return "Section"
	}
}
