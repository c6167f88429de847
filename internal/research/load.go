package research

import (
	"bytes"
	"encoding/json"
	"fmt"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// patch is a decoded partial report. A nil field was absent or null.
type patch struct {
	Topic       *string
	Outline     *[]OutlineSection
	Notes       *[]Note
	Summary     *string
	KeyFindings *[]string
	IsCompleted *bool
}

// decodePatch decodes the known keys of a JSON object. Unknown keys are ignored.
func decodePatch(data []byte) (patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return patch{}, fmt.Errorf("%w: %w", scouterrors.ErrInvalidReport, err)
	}

	var p patch
	fields := []struct {
		key string
		dst any
	}{
		{"topic", &p.Topic},
		{"outline", &p.Outline},
		{"notes", &p.Notes},
		{"summary", &p.Summary},
		{"keyFindings", &p.KeyFindings},
		{"isCompleted", &p.IsCompleted},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return patch{}, fmt.Errorf("%w: field %q: %w", scouterrors.ErrInvalidReport, f.key, err)
		}
	}
	if p.Outline != nil {
		if err := checkSectionIDs(*p.Outline); err != nil {
			return patch{}, err
		}
	}
	return p, nil
}

// checkSectionIDs returns ErrInvalidReport when two sections share an id.
func checkSectionIDs(sections []OutlineSection) error {
	seen := make(map[string]struct{}, len(sections))
	for _, sec := range sections {
		if _, dup := seen[sec.ID]; dup {
			return fmt.Errorf("%w: duplicate section id %q", scouterrors.ErrInvalidReport, sec.ID)
		}
		seen[sec.ID] = struct{}{}
	}
	return nil
}

// LoadFromJSON merges the fields present in data into the store. A key that is
// present overwrites even when its value is empty, zero or false; absent and
// null keys leave the current value alone. Malformed input, including an
// outline with repeated section ids, returns ErrInvalidReport and changes nothing.
func (s *Store) LoadFromJSON(data []byte) error {
	p, err := decodePatch(data)
	if err != nil {
		return err
	}
	s.apply(p, func(string) bool { return true }, func(bool) bool { return true })
	return nil
}

// LoadFromJSONLegacy merges like LoadFromJSON but treats empty strings and
// false as absent, matching payloads produced by older clients. Arrays are
// applied whenever present, including empty ones.
func (s *Store) LoadFromJSONLegacy(data []byte) error {
	p, err := decodePatch(data)
	if err != nil {
		return err
	}
	s.apply(p, func(v string) bool { return v != "" }, func(v bool) bool { return v })
	return nil
}

func (s *Store) apply(p patch, keepString func(string) bool, keepBool func(bool) bool) {
	s.update(func(st *State) bool {
		if p.Topic != nil && keepString(*p.Topic) {
			st.Topic = *p.Topic
		}
		if p.Outline != nil {
			st.Outline = cloneSections(*p.Outline)
		}
		if p.Notes != nil {
			st.Notes = cloneNotes(*p.Notes)
		}
		if p.Summary != nil && keepString(*p.Summary) {
			st.Summary = *p.Summary
		}
		if p.KeyFindings != nil {
			st.KeyFindings = cloneStrings(*p.KeyFindings)
		}
		if p.IsCompleted != nil && keepBool(*p.IsCompleted) {
			st.IsCompleted = *p.IsCompleted
		}
		return true
	})
}
