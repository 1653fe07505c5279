// Package pagerange parses page selection expressions such as "1,3,5-8".
//
// An expression is a comma-separated list of segments. Each segment is a
// single page number or an inclusive "start-end" range. Whitespace is
// ignored anywhere in the expression. Page numbers are 1-based. The
// expansion preserves the order and duplicates exactly as written; no
// sorting or de-duplication happens across segments.
package pagerange

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// InvalidRangeError reports a page expression that could not be parsed.
type InvalidRangeError struct {
	Expression string // full expression as given
	Segment    string // offending comma-separated segment, if any
	Start      int    // populated for descending ranges
	End        int
	Reason     string
}

func (e *InvalidRangeError) Error() string {
	switch {
	case e.Start > 0:
		return fmt.Sprintf("pagerange: starting page %d is greater than ending page %d in %q", e.Start, e.End, e.Expression)
	case e.Segment != "":
		return fmt.Sprintf("pagerange: invalid segment %q in %q: %s", e.Segment, e.Expression, e.Reason)
	default:
		return fmt.Sprintf("pagerange: invalid expression %q: %s", e.Expression, e.Reason)
	}
}

// Parse expands a page selection expression into an explicit page list.
// Upper bounds are not checked here; whether a page exists in a given
// document is only known once that document is opened.
func Parse(expression string) ([]int, error) {
	compact := stripSpace(expression)
	if compact == "" {
		return nil, &InvalidRangeError{Expression: expression, Reason: "empty expression"}
	}

	var pages []int
	for _, segment := range strings.Split(compact, ",") {
		bounds := strings.Split(segment, "-")
		switch len(bounds) {
		case 1:
			page, err := parsePage(expression, segment, bounds[0])
			if err != nil {
				return nil, err
			}
			pages = append(pages, page)
		case 2:
			start, err := parsePage(expression, segment, bounds[0])
			if err != nil {
				return nil, err
			}
			end, err := parsePage(expression, segment, bounds[1])
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, &InvalidRangeError{Expression: expression, Segment: segment, Start: start, End: end, Reason: "descending range"}
			}
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
		default:
			return nil, &InvalidRangeError{Expression: expression, Segment: segment, Reason: "malformed range"}
		}
	}
	return pages, nil
}

// ValidatePages checks an explicit page list against the 1-based numbering
// rule. Used by callers that accept pre-expanded lists instead of
// expressions.
func ValidatePages(pages []int) error {
	for _, p := range pages {
		if p < 1 {
			return &InvalidRangeError{Segment: strconv.Itoa(p), Reason: "page numbers start at 1"}
		}
	}
	return nil
}

func parsePage(expression, segment, field string) (int, error) {
	if field == "" {
		return 0, &InvalidRangeError{Expression: expression, Segment: segment, Reason: "missing page number"}
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, &InvalidRangeError{Expression: expression, Segment: segment, Reason: "not a page number"}
		}
	}
	page, err := strconv.Atoi(field)
	if err != nil {
		return 0, &InvalidRangeError{Expression: expression, Segment: segment, Reason: "not a page number"}
	}
	if page < 1 {
		return 0, &InvalidRangeError{Expression: expression, Segment: segment, Reason: "page numbers start at 1"}
	}
	return page, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
