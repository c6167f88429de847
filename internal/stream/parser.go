package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// maxEventSize bounds a single SSE line; report events carry the whole outline.
const maxEventSize = 4 << 20

// ParseData decodes the payload of an SSE data field. It reports false for
// payloads that are not a JSON object with a type.
func ParseData(data string) (Message, bool) {
	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return Message{}, false
	}
	if msg.Type == "" {
		return Message{}, false
	}
	return msg, true
}

// Reader splits an SSE byte stream into Messages. Comment lines, non-data
// fields and undecodable payloads are skipped.
type Reader struct {
	scanner *bufio.Scanner
	data    []string
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &Reader{scanner: sc}
}

// Next returns the next decodable message. It returns io.EOF when the stream
// ends; a trailing event without a terminating blank line is still delivered.
func (r *Reader) Next() (Message, error) {
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if msg, ok := r.flush(); ok {
				return msg, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		if field != "data" {
			continue
		}
		r.data = append(r.data, strings.TrimPrefix(value, " "))
	}

	if err := r.scanner.Err(); err != nil {
		return Message{}, err
	}
	if msg, ok := r.flush(); ok {
		return msg, nil
	}
	return Message{}, io.EOF
}

func (r *Reader) flush() (Message, bool) {
	if len(r.data) == 0 {
		return Message{}, false
	}
	payload := strings.Join(r.data, "\n")
	r.data = r.data[:0]
	return ParseData(payload)
}

// IsEOF reports whether err marks a cleanly finished stream.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
