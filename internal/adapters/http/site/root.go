// Package site serves the landing page listing the API routes.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrRender = errors.New("landing page render failed")
)

// Link is one route shown on the landing page.
type Link struct {
	Path    string
	Summary string
}

// DefaultLinks lists the aggregate and metadata routes.
var DefaultLinks = []Link{
	{"/aggregates/wins-per-season", "Wins per season"},
	{"/aggregates/points-per-season", "Points per season"},
	{"/aggregates/outcomes", "Wins, podiums, 4th-10th and other finishes"},
	{"/aggregates/poles-by-track", "Pole positions per event"},
	{"/aggregates/poles-vs-wins", "Poles and wins per year"},
	{"/aggregates/pole-comparison", "Pole positions of selected drivers"},
	{"/aggregates/monaco-finishes", "Finishing positions at Monaco"},
	{"/aggregates/fatalities-per-decade", "Fatal accidents per decade"},
	{"/aggregates/fatalities-before-after", "Fatal accidents before and after the threshold year"},
	{"/aggregates/career", "Career headline numbers"},
	{"/seasons", "Season span and selectable drivers"},
	{"/circuits/monaco/layout", "Circuit layout GeoJSON"},
	{"/stats", "Table sizes and load diagnostics"},
}

type page struct {
	Title       string
	FocusDriver string
	Links       []Link
}

// Register attaches the landing page to mux at exactly "/".
func Register(_ context.Context, mux *http.ServeMux, focusDriver string) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler(focusDriver))
}

// RootHandler renders the landing page.
type RootHandler struct {
	page page
}

// NewRootHandler creates a landing page handler for focusDriver.
func NewRootHandler(focusDriver string) *RootHandler {
	return &RootHandler{page: page{Title: "Paddock", FocusDriver: focusDriver, Links: DefaultLinks}}
}

// ServeHTTP serves GET / and answers 404 for any other path under it.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, h.page); err != nil {
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
