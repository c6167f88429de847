// Package research holds the editable research report: topic, outline,
// collected notes, summary and key findings.
package research

import (
	"slices"
	"time"

	"github.com/mrz1836/scout/internal/constants"
)

// OutlineSection is one editable block of the report.
type OutlineSection struct {
	ID      string                `json:"id"`
	Title   string                `json:"title"`
	Content string                `json:"content"`
	Type    constants.SectionType `json:"type"`
	Images  []string              `json:"images"`
}

// SectionUpdate is a partial OutlineSection. Nil fields are left unchanged.
// The id is not updatable.
type SectionUpdate struct {
	Title   *string                `json:"title,omitempty"`
	Content *string                `json:"content,omitempty"`
	Type    *constants.SectionType `json:"type,omitempty"`
	Images  *[]string              `json:"images,omitempty"`
}

// Note is a source note collected during the search stage.
type Note struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Likes   int      `json:"likes"`
	Images  []string `json:"images"`
	URL     string   `json:"url"`
}

// State is the store's raw content. Its JSON keys match what LoadFromJSON accepts.
type State struct {
	Topic       string           `json:"topic"`
	Outline     []OutlineSection `json:"outline"`
	Notes       []Note           `json:"notes"`
	Summary     string           `json:"summary"`
	KeyFindings []string         `json:"keyFindings"`
	IsCompleted bool             `json:"isCompleted"`
}

// Report is the derived, export-ready view of the store.
type Report struct {
	Topic       string           `json:"topic"`
	Summary     string           `json:"summary"`
	KeyFindings []string         `json:"keyFindings"`
	Sections    []OutlineSection `json:"sections"`
	Notes       []Note           `json:"notes"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func emptyState() State {
	return State{
		Outline:     []OutlineSection{},
		Notes:       []Note{},
		KeyFindings: []string{},
	}
}

func cloneSection(s OutlineSection) OutlineSection {
	s.Images = cloneStrings(s.Images)
	return s
}

func cloneSections(in []OutlineSection) []OutlineSection {
	out := make([]OutlineSection, len(in))
	for i, s := range in {
		out[i] = cloneSection(s)
	}
	return out
}

func cloneNotes(in []Note) []Note {
	out := make([]Note, len(in))
	for i, n := range in {
		n.Images = cloneStrings(n.Images)
		out[i] = n
	}
	return out
}

// cloneStrings copies in, mapping nil to an empty slice.
func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func (s State) clone() State {
	return State{
		Topic:       s.Topic,
		Outline:     cloneSections(s.Outline),
		Notes:       cloneNotes(s.Notes),
		Summary:     s.Summary,
		KeyFindings: cloneStrings(s.KeyFindings),
		IsCompleted: s.IsCompleted,
	}
}
