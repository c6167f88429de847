package research

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mrz1836/scout/internal/clock"
	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/observe"
)

// Store holds the research report being assembled or edited. It has no
// persistence of its own. All methods are safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state State
	clock clock.Clock
	hub   observe.Hub
}

// New creates an empty Store. A nil clock uses the system clock.
func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{state: emptyState(), clock: clk}
}

// update applies fn under the lock and notifies subscribers if fn reports a change.
func (s *Store) update(fn func(st *State) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	s.mu.Unlock()

	if changed {
		s.hub.Notify()
	}
	return changed
}

// SetTopic replaces the topic.
func (s *Store) SetTopic(topic string) {
	s.update(func(st *State) bool {
		st.Topic = topic
		return true
	})
}

// SetOutline replaces the outline. Repeated section ids are rejected with
// ErrInvalidReport and leave the outline unchanged.
func (s *Store) SetOutline(sections []OutlineSection) error {
	if err := checkSectionIDs(sections); err != nil {
		return err
	}
	s.update(func(st *State) bool {
		st.Outline = cloneSections(sections)
		return true
	})
	return nil
}

// SetNotes replaces the collected notes.
func (s *Store) SetNotes(notes []Note) {
	s.update(func(st *State) bool {
		st.Notes = cloneNotes(notes)
		return true
	})
}

// SetSummary replaces the summary.
func (s *Store) SetSummary(summary string) {
	s.update(func(st *State) bool {
		st.Summary = summary
		return true
	})
}

// SetKeyFindings replaces the key findings.
func (s *Store) SetKeyFindings(findings []string) {
	s.update(func(st *State) bool {
		st.KeyFindings = cloneStrings(findings)
		return true
	})
}

// MarkCompleted flags the report as finished.
func (s *Store) MarkCompleted() {
	s.update(func(st *State) bool {
		st.IsCompleted = true
		return true
	})
}

// AddSection appends a section with a fresh id, an empty title and no images.
func (s *Store) AddSection(typ constants.SectionType, content string) OutlineSection {
	section := OutlineSection{
		ID:      newSectionID(s.clock.Now()),
		Content: content,
		Type:    typ,
		Images:  []string{},
	}
	s.update(func(st *State) bool {
		st.Outline = append(st.Outline, section)
		return true
	})
	return cloneSection(section)
}

// UpdateSection merges u into the section with id. It reports whether the
// section exists; a missing id changes nothing.
func (s *Store) UpdateSection(id string, u SectionUpdate) bool {
	return s.update(func(st *State) bool {
		i := slices.IndexFunc(st.Outline, func(sec OutlineSection) bool { return sec.ID == id })
		if i < 0 {
			return false
		}
		sec := &st.Outline[i]
		if u.Title != nil {
			sec.Title = *u.Title
		}
		if u.Content != nil {
			sec.Content = *u.Content
		}
		if u.Type != nil {
			sec.Type = *u.Type
		}
		if u.Images != nil {
			sec.Images = cloneStrings(*u.Images)
		}
		return true
	})
}

// DeleteSection removes the section with id and reports whether it existed.
func (s *Store) DeleteSection(id string) bool {
	return s.update(func(st *State) bool {
		i := slices.IndexFunc(st.Outline, func(sec OutlineSection) bool { return sec.ID == id })
		if i < 0 {
			return false
		}
		st.Outline = slices.Delete(st.Outline, i, i+1)
		return true
	})
}

// MoveSection relocates the section at index from to index to, keeping the
// relative order of every other section. Equal indices are a no-op. Indices
// outside the outline return ErrValueOutOfRange and change nothing.
func (s *Store) MoveSection(from, to int) error {
	if from == to {
		return nil
	}

	var err error
	s.update(func(st *State) bool {
		n := len(st.Outline)
		if from < 0 || from >= n || to < 0 || to >= n {
			err = fmt.Errorf("move section %d to %d of %d: %w", from, to, n, scouterrors.ErrValueOutOfRange)
			return false
		}
		item := st.Outline[from]
		st.Outline = slices.Delete(st.Outline, from, from+1)
		st.Outline = slices.Insert(st.Outline, to, item)
		return true
	})
	return err
}

// Section returns a copy of the section with id.
func (s *Store) Section(id string) (OutlineSection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Outline, func(sec OutlineSection) bool { return sec.ID == id })
	if i < 0 {
		return OutlineSection{}, false
	}
	return cloneSection(s.state.Outline[i]), true
}

// Reset restores every field to its empty default.
func (s *Store) Reset() {
	s.update(func(st *State) bool {
		*st = emptyState()
		return true
	})
}

// State returns a deep copy of the store's content.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Report builds the export view, stamped with the current time on every call.
func (s *Store) Report() Report {
	s.mu.Lock()
	st := s.state.clone()
	s.mu.Unlock()

	return Report{
		Topic:       st.Topic,
		Summary:     st.Summary,
		KeyFindings: st.KeyFindings,
		Sections:    st.Outline,
		Notes:       st.Notes,
		CreatedAt:   s.clock.Now().UTC(),
	}
}

// Subscribe registers fn to run after every change and returns its unsubscribe.
func (s *Store) Subscribe(fn func()) func() {
	return s.hub.Subscribe(fn)
}

// LoadReport replaces the store's content with an exported report, as when
// reopening an archived one.
func (s *Store) LoadReport(r Report, completed bool) {
	s.update(func(st *State) bool {
		*st = State{
			Topic:       r.Topic,
			Outline:     cloneSections(r.Sections),
			Notes:       cloneNotes(r.Notes),
			Summary:     r.Summary,
			KeyFindings: cloneStrings(r.KeyFindings),
			IsCompleted: completed,
		}
		return true
	})
}
