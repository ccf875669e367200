package avrex

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	reportOptions = cascadia.MustCompile("#report_id option")
	formatOptions = cascadia.MustCompile("#format_id option")
)

// SelectOption is a single entry of a selection list on the reports page.
type SelectOption struct {
	Value string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// OptionMap is the ordered list of selectable options scraped from a <select>.
// Placeholder entries are never present: no Value is "" or "0" and no Label is "".
type OptionMap []SelectOption

// Get returns the label for value.
func (m OptionMap) Get(value string) (string, bool) {
	for _, o := range m {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// scrapeOptions builds an OptionMap from the <option> elements matched by m.
func scrapeOptions(doc *goquery.Document, m goquery.Matcher) OptionMap {
	var out OptionMap
	doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		value := s.AttrOr("value", "")
		label := nodeString(s.Get(0))
		if value == "" || value == "0" || label == "" {
			return
		}
		out = append(out, SelectOption{Value: value, Label: label})
	})
	return out
}

// nodeString returns the text of n when n has exactly one child that is, or
// wraps, a single text node. Anything else yields "".
func nodeString(n *html.Node) string {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil {
		return ""
	}
	switch c.Type {
	case html.TextNode:
		return c.Data
	case html.ElementNode:
		return nodeString(c)
	}
	return ""
}
