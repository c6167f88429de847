package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseData(t *testing.T) {
	msg, ok := ParseData(`{"type":"progress","recordId":"r1","percent":65}`)
	require.True(t, ok)
	assert.Equal(t, TypeProgress, msg.Type)
	assert.Equal(t, "r1", msg.RecordID)
	require.NotNil(t, msg.Percent)
	assert.Equal(t, 65, *msg.Percent)

	_, ok = ParseData(`not json`)
	assert.False(t, ok)

	_, ok = ParseData(`{"message":"no type"}`)
	assert.False(t, ok)
}

func TestReader(t *testing.T) {
	raw := strings.Join([]string{
		": ping",
		"",
		`data: {"type":"log","level":"info","message":"start"}`,
		"",
		"event: message",
		`data: {"type":"stage","stage":"searching"}`,
		"",
		"data: {broken",
		"",
		`data: {"type":"stats",`,
		`data: "stats":{"notesFound":3}}`,
		"",
		`data: {"type":"complete"}`,
	}, "\r\n")

	r := NewReader(strings.NewReader(raw))

	var got []Message
	for {
		msg, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, msg)
	}

	require.Len(t, got, 4)
	assert.Equal(t, TypeLog, got[0].Type)
	assert.Equal(t, "start", got[0].Message)
	assert.Equal(t, "searching", got[1].Stage)
	require.NotNil(t, got[2].Stats)
	require.NotNil(t, got[2].Stats.NotesFound)
	assert.Equal(t, 3, *got[2].Stats.NotesFound)
	assert.Equal(t, TypeComplete, got[3].Type, "trailing event without blank line is delivered")
}
