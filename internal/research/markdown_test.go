package research

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/scout/internal/constants"
)

func TestMarkdown(t *testing.T) {
	r := Report{
		Topic:       "Kyoto travel",
		Summary:     "Best in autumn.",
		KeyFindings: []string{"book early", "use the bus pass"},
		Sections: []OutlineSection{
			{ID: "a", Type: constants.SectionCover, Content: "intro", Images: []string{"https://img/a.jpg"}},
			{ID: "b", Title: "Food", Type: constants.SectionContent, Content: "eat"},
		},
		Notes: []Note{
			{ID: "n1", Title: "Temple guide", Author: "amy", Likes: 12, URL: "https://example.com/n1"},
			{ID: "n2"},
		},
		CreatedAt: time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
	}

	md := Markdown(r)

	assert.True(t, strings.HasPrefix(md, "# Kyoto travel\n\nBest in autumn.\n\n"))
	assert.Contains(t, md, "## Key findings\n\n- book early\n- use the bus pass\n")
	assert.Contains(t, md, "## Overview\n\nintro\n\n![](https://img/a.jpg)\n")
	assert.Contains(t, md, "## Food\n\neat\n")
	assert.Contains(t, md, "- [Temple guide](https://example.com/n1) by amy (12 likes)\n")
	assert.Contains(t, md, "- n2\n")
	assert.Contains(t, md, "_Generated 2024-06-15 10:30 UTC_")
	assert.Less(t, strings.Index(md, "## Overview"), strings.Index(md, "## Food"))
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(Report{})
	assert.Equal(t, "# Untitled research\n\n", md)
}
