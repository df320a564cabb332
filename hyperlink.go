package xltemplate

import "strings"

// HyperlinkValue represents a clickable hyperlink in a cell.
// When a fill value is of this type, Fill writes the display text and sets
// the hyperlink on the target cell.
type HyperlinkValue struct {
	URL     string
	Display string
}

// String returns the display text for the hyperlink.
func (h HyperlinkValue) String() string {
	if h.Display != "" {
		return h.Display
	}
	return h.URL
}

// Hyperlink creates a HyperlinkValue for use as a fill value.
// A URL starting with "#" links to a location in the workbook, e.g. "#Sheet2!A1".
func Hyperlink(url, display string) HyperlinkValue {
	return HyperlinkValue{URL: url, Display: display}
}

// target returns the excelize link target and link type.
func (h HyperlinkValue) target() (string, string) {
	if loc, ok := strings.CutPrefix(h.URL, "#"); ok {
		return loc, linkLocation
	}
	return h.URL, linkExternal
}
