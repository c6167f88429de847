package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/router"
)

func TestRoutes_List(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCmd(t, cfg, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "history-detail")
	assert.Contains(t, out, "/publish/edit/:draftId?")

	out, err = runCmd(t, cfg, "routes", "-o", "json")
	require.NoError(t, err)
	var routes []router.Route
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	assert.Equal(t, router.Routes(), routes)
}

func TestRoutes_Resolve(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCmd(t, cfg, "routes", "-o", "json", "/history/abc?tab=notes")
	require.NoError(t, err)
	var m router.Match
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "history-detail", m.Route.Name)
	assert.Equal(t, "abc", m.Params["id"])

	out, err = runCmd(t, cfg, "routes", "/outline")
	require.NoError(t, err)
	assert.Contains(t, out, "OutlineView")

	_, err = runCmd(t, cfg, "routes", "/nowhere/at/all")
	require.ErrorIs(t, err, errors.ErrRouteNotFound)
}
