package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/history"
	"github.com/mrz1836/scout/internal/research"
	"github.com/mrz1836/scout/internal/storage"
)

type fixture struct {
	srv      *Server
	tasks    *activetask.Store
	research *research.Store
	history  *history.Store
	backend  *storage.MemoryBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	tasks := activetask.New(ctx, storage.NewAdapter(backend, constants.ActiveTaskKey, zerolog.Nop()), nil, zerolog.Nop())
	rs := research.New(nil)
	hs, err := history.Open(history.MemoryPath, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })

	srv := New(Options{
		Tasks:        tasks,
		Research:     rs,
		History:      hs,
		Logger:       zerolog.Nop(),
		TickInterval: 20 * time.Millisecond,
	})
	return &fixture{srv: srv, tasks: tasks, research: rs, history: hs, backend: backend}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTaskEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/task/start", `{"topic":"kyoto"}`)
	require.Equal(t, http.StatusOK, w.Code)
	st := decodeBody[activetask.Status](t, w)
	assert.Equal(t, "kyoto", st.Topic)
	assert.True(t, st.HasActiveTask)

	w = f.do(t, http.MethodPost, "/api/task/stage", `{"stage":"searching"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, decodeBody[activetask.Status](t, w).Progress)

	w = f.do(t, http.MethodPost, "/api/task/progress", `{"progress":130}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, decodeBody[activetask.Status](t, w).Progress)

	w = f.do(t, http.MethodPost, "/api/task/log", `{"level":"success","message":"found notes"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/task/stats", `{"notesFound":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decodeBody[activetask.Status](t, w).Stats.NotesFound)

	w = f.do(t, http.MethodPost, "/api/task/complete", "")
	require.Equal(t, http.StatusOK, w.Code)
	st = decodeBody[activetask.Status](t, w)
	assert.False(t, st.IsRunning)
	assert.True(t, st.HasCompletedTask)

	w = f.do(t, http.MethodGet, "/api/task", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"planning"}, decodeBody[activetask.Status](t, w).CompletedStages)

	w = f.do(t, http.MethodDelete, "/api/task", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, f.tasks.State().Topic)
	_, err := f.backend.Get(context.Background(), constants.ActiveTaskKey)
	assert.Error(t, err)
}

func TestTaskEndpoints_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name, path, body string
	}{
		{"bad json", "/api/task/start", `{`},
		{"empty topic", "/api/task/start", `{"topic":"  "}`},
		{"empty stage", "/api/task/stage", `{}`},
		{"missing progress", "/api/task/progress", `{}`},
		{"bad level", "/api/task/log", `{"level":"debug","message":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestResearchEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/research", `{"topic":"kyoto","summary":"s","keyFindings":["a"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kyoto", decodeBody[research.State](t, w).Topic)

	w = f.do(t, http.MethodPut, "/api/research", `{"outline":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/api/research?legacy=1", `{"summary":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s", f.research.State().Summary)

	w = f.do(t, http.MethodPost, "/api/research/sections", `{"type":"cover","content":"c"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeBody[research.OutlineSection](t, w)

	w = f.do(t, http.MethodPost, "/api/research/sections", `{"content":"body"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeBody[research.OutlineSection](t, w)
	assert.Equal(t, constants.SectionContent, second.Type)

	w = f.do(t, http.MethodPost, "/api/research/sections", `{"type":"appendix"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/api/research/sections/"+first.ID, `{"title":"Cover page"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cover page", decodeBody[research.OutlineSection](t, w).Title)

	w = f.do(t, http.MethodPatch, "/api/research/sections/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/research/sections/move", `{"from":1,"to":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	outline := decodeBody[[]research.OutlineSection](t, w)
	require.Len(t, outline, 2)
	assert.Equal(t, second.ID, outline[0].ID)

	w = f.do(t, http.MethodPost, "/api/research/sections/move", `{"from":0,"to":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/research/sections/"+first.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodDelete, "/api/research/sections/"+first.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/research/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	rep := decodeBody[research.Report](t, w)
	assert.Len(t, rep.Sections, 1)
	assert.False(t, rep.CreatedAt.IsZero())

	w = f.do(t, http.MethodDelete, "/api/research", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, f.research.State().Topic)
}

func TestHistoryEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "nothing to archive without a topic")

	f.research.SetTopic("kyoto")
	f.research.SetSummary("autumn")
	f.research.MarkCompleted()

	w = f.do(t, http.MethodPost, "/api/history", "")
	require.Equal(t, http.StatusCreated, w.Code)
	rec := decodeBody[history.Record](t, w)
	assert.Equal(t, history.StatusCompleted, rec.Status)

	w = f.do(t, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]history.Record](t, w), 1)

	w = f.do(t, http.MethodGet, "/api/history?q=tokyo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]history.Record](t, w))

	w = f.do(t, http.MethodGet, "/api/history/"+rec.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kyoto", decodeBody[history.Record](t, w).Topic)

	f.research.Reset()
	w = f.do(t, http.MethodPost, "/api/history/"+rec.ID+"/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "autumn", f.research.State().Summary)
	assert.True(t, f.research.State().IsCompleted)

	w = f.do(t, http.MethodDelete, "/api/history/"+rec.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/history/"+rec.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryDisabled(t *testing.T) {
	srv := New(Options{
		Tasks:    activetask.New(context.Background(), nil, nil, zerolog.Nop()),
		Research: research.New(nil),
		Logger:   zerolog.Nop(),
	})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestViewEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"publish-edit"`)

	w = f.do(t, http.MethodGet, "/history/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m struct {
		Route struct {
			Name string `json:"name"`
			View string `json:"view"`
		} `json:"route"`
		Params map[string]string `json:"params"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "history-detail", m.Route.Name)
	assert.Equal(t, "abc", m.Params["id"])

	w = f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskClockStream(t *testing.T) {
	f := newFixture(t)
	f.tasks.StartTask(context.Background(), "kyoto")

	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/task/clock", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	var frames []clockEvent
	for len(frames) < 3 && sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev clockEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		frames = append(frames, ev)
	}
	require.Len(t, frames, 3)
	assert.True(t, frames[0].IsRunning)
	assert.Equal(t, constants.StagePlanning, frames[0].Stage)

	cancel()
	assert.Eventually(t, func() bool { return f.tasks.Tick() >= 2 }, time.Second, 10*time.Millisecond)
}
