// Package router holds the static table of application views and resolves
// paths against it.
package router

import (
	"fmt"
	"net/url"
	"strings"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Route maps a path pattern to a view. Pattern segments starting with ':' are
// parameters; a trailing '?' makes the final parameter optional.
type Route struct {
	Name    string `json:"name"`
	Pattern string `json:"path"`
	View    string `json:"view"`
}

// Match is the result of resolving a path.
type Match struct {
	Route  Route             `json:"route"`
	Params map[string]string `json:"params"`
}

// routes is matched in order; the first match wins.
//
//nolint:gochecknoglobals // static route table
var routes = []Route{
	{Name: "home", Pattern: "/", View: "HomeView"},
	{Name: "research", Pattern: "/research", View: "ResearchView"},
	{Name: "outline", Pattern: "/outline", View: "OutlineView"},
	{Name: "report", Pattern: "/report", View: "ReportView"},
	{Name: "history", Pattern: "/history", View: "HistoryView"},
	{Name: "history-detail", Pattern: "/history/:id", View: "HistoryView"},
	{Name: "compare", Pattern: "/compare", View: "CompareView"},
	{Name: "settings", Pattern: "/settings", View: "SettingsView"},
	{Name: "publish-edit", Pattern: "/publish/edit/:draftId?", View: "PublishEditView"},
	{Name: "publish-preview", Pattern: "/publish/preview/:draftId", View: "PublishPreviewView"},
	{Name: "publish-result", Pattern: "/publish/result/:draftId", View: "PublishResultView"},
}

// Routes returns a copy of the route table in match order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Resolve finds the first route matching path. Query strings, fragments and a
// trailing slash are ignored.
func Resolve(path string) (Match, bool) {
	path, _, _ = strings.Cut(path, "?")
	path, _, _ = strings.Cut(path, "#")
	segs := split(path)

	for _, r := range routes {
		if params, ok := match(split(r.Pattern), segs); ok {
			return Match{Route: r, Params: params}, true
		}
	}
	return Match{}, false
}

// Path builds the URL path for the named route. Required parameters missing
// from params return ErrMissingRouteParam.
func Path(name string, params map[string]string) (string, error) {
	for _, r := range routes {
		if r.Name != name {
			continue
		}

		var b strings.Builder
		for _, seg := range split(r.Pattern) {
			p, isParam, optional := param(seg)
			if !isParam {
				b.WriteString("/" + seg)
				continue
			}
			v := params[p]
			if v == "" {
				if optional {
					continue
				}
				return "", fmt.Errorf("route %s: %q: %w", name, p, scouterrors.ErrMissingRouteParam)
			}
			b.WriteString("/" + url.PathEscape(v))
		}
		if b.Len() == 0 {
			return "/", nil
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("route %q: %w", name, scouterrors.ErrRouteNotFound)
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// param reports whether seg is a parameter and, if so, its name and optionality.
func param(seg string) (name string, isParam, optional bool) {
	if !strings.HasPrefix(seg, ":") {
		return "", false, false
	}
	name = strings.TrimPrefix(seg, ":")
	if strings.HasSuffix(name, "?") {
		return strings.TrimSuffix(name, "?"), true, true
	}
	return name, true, false
}

func match(pattern, segs []string) (map[string]string, bool) {
	params := map[string]string{}

	for i, p := range pattern {
		name, isParam, optional := param(p)
		if i >= len(segs) {
			// only a trailing optional parameter may be missing
			if isParam && optional && i == len(pattern)-1 {
				return params, true
			}
			return nil, false
		}
		seg := segs[i]
		if !isParam {
			if seg != p {
				return nil, false
			}
			continue
		}
		v, err := url.PathUnescape(seg)
		if err != nil {
			return nil, false
		}
		params[name] = v
	}

	if len(segs) != len(pattern) {
		return nil, false
	}
	return params, true
}
