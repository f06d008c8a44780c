package derive

import (
	"regexp"
	"strings"
	"time"
)

// accidentDateLayouts are tried in order. Day-first layouts come first since
// the fatality table writes dates that way.
var accidentDateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2006-01-02",
	"1/2/2006",
	"January 2006",
	"2006",
}

var (
	footnoteMarker = regexp.MustCompile(`\[[^\]]*\]`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// ParseAccidentDate parses the free-text "Date of accident" cell. Footnote
// markers such as "[a]" and symbols trailing the date are ignored. The second
// return value is false when no layout matches.
func ParseAccidentDate(raw string) (time.Time, bool) {
	s := footnoteMarker.ReplaceAllString(raw, " ")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '†', '‡', '*', '\u00a0':
			return ' '
		}
		return r
	}, s)
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range accidentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
