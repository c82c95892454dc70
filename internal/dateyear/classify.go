// Package dateyear extracts a best-effort calendar year from free-form Date
// header text. Classification is used to partition archives by year, so it
// favors recall over precision: a plausible year beats no answer, and
// unclassifiable text is reported as absent rather than as an error.
package dateyear

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Method identifies which strategy produced a year.
type Method int

const (
	// MethodPattern matched a 19xx/20xx substring anywhere in the text.
	MethodPattern Method = iota
	// MethodLayout parsed a structured date from a prefix of the text.
	MethodLayout
	// MethodToken found a standalone 4-digit token.
	MethodToken
)

func (m Method) String() string {
	switch m {
	case MethodPattern:
		return "pattern"
	case MethodLayout:
		return "layout"
	case MethodToken:
		return "token"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Result is a successful classification.
type Result struct {
	Year   string // 4-digit year label
	Method Method
}

type strategy struct {
	method Method
	apply  func(string) (string, bool)
}

// strategies run in order; the first hit wins. The pattern scan leads
// because a 20th/21st-century year substring is the strongest signal in
// garbled text. The layout ladder and bare-token fallback only see dates
// the scan cannot: years outside 1900-2099.
var strategies = []strategy{
	{MethodPattern, scanPattern},
	{MethodLayout, parseLayouts},
	{MethodToken, bareToken},
}

// Classify extracts a year label from date header text. Returns false when
// no strategy produces one.
func Classify(dateText string) (Result, bool) {
	for _, st := range strategies {
		if year, ok := st.apply(dateText); ok {
			return Result{Year: year, Method: st.method}, true
		}
	}
	return Result{}, false
}

var yearPattern = regexp.MustCompile(`(19|20)\d\d`)

// scanPattern returns the first 19xx/20xx substring by position. No word
// boundaries: "garbled-2019-xx" classifies as 2019.
func scanPattern(s string) (string, bool) {
	if m := yearPattern.FindString(s); m != "" {
		return m, true
	}
	return "", false
}

// layouts are structured date shapes tried against prefixes of the text.
// Non-padded day and month accept both padded and unpadded input.
var layouts = []string{
	"Mon, 2 Jan 2006",
	"2 Jan 2006",
	"Jan 2 2006",
	"2006-1-2",
	"Mon, 2 Jan 2006 15:04:05",
	"Mon Jan 2 15:04:05 2006",
	"2 Jan 2006 15:04:05",
}

// prefixLengths truncate away trailing timezone and comment text that
// structured parsing chokes on. The full string is always tried last.
var prefixLengths = []int{25, 30}

func parseLayouts(s string) (string, bool) {
	lengths := make([]int, 0, len(prefixLengths)+1)
	for _, n := range prefixLengths {
		if n > len(s) {
			n = len(s)
		}
		lengths = append(lengths, n)
	}
	lengths = append(lengths, len(s))

	for _, layout := range layouts {
		for _, n := range lengths {
			prefix := strings.Join(strings.Fields(s[:n]), " ")
			if prefix == "" {
				continue
			}
			if t, err := time.Parse(layout, prefix); err == nil {
				return fmt.Sprintf("%04d", t.Year()), true
			}
		}
	}
	return "", false
}

// bareToken falls back to any whitespace-delimited 4-digit token.
func bareToken(s string) (string, bool) {
	for _, tok := range strings.Fields(s) {
		if len(tok) == 4 && allDigits(tok) {
			return tok, true
		}
	}
	return "", false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
