package avrex

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Choice kinds, used in UnknownChoiceError.
const (
	KindReport = "report"
	KindFormat = "format"
)

// FormatAliases maps file-extension style names to the labels the portal uses
// for export formats.
var FormatAliases = map[string]string{
	"CSV": "Comma Delimited",
	"PSV": "Pipe Delimited",
	"TSV": "Tab Delimited",
}

// normalize lowercases key. A Caser is stateful, so one is made per call.
func normalize(key string) string {
	return cases.Lower(language.Und).String(key)
}

// Choices resolves user supplied keys to option values. A key may be an option
// value, its exact label, or a registered alias, compared case-insensitively.
type Choices struct {
	kind    string
	choices map[string]string
}

// NewChoices builds a resolver for options. Each alias maps to a value or label
// of options; aliases whose target is not offered are ignored.
func NewChoices(kind string, options OptionMap, aliases map[string]string) *Choices {
	c := &Choices{
		kind:    kind,
		choices: make(map[string]string, len(options)*2+len(aliases)),
	}
	for _, o := range options {
		c.choices[normalize(o.Value)] = o.Value
		c.choices[normalize(o.Label)] = o.Value
	}
	for alias, target := range aliases {
		if value, ok := c.choices[normalize(target)]; ok {
			c.choices[normalize(alias)] = value
		}
	}
	return c
}

// Resolve returns the option value for key.
func (c *Choices) Resolve(key string) (string, error) {
	if value, ok := c.choices[normalize(key)]; ok {
		return value, nil
	}
	return "", &UnknownChoiceError{Kind: c.kind, Key: key}
}
