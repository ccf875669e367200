package browser

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// control is a single named form control with its current state.
type control struct {
	tag      string // input, select, textarea, button
	kind     string // lowercased input/button type
	name     string
	value    string
	checked  bool
	options  []string // select option values, in document order
	disabled bool
}

// Form is an HTML form whose control values can be changed before submission.
// Changes are local to the Form and do not modify the page document.
type Form struct {
	action   string
	method   string
	enctype  string
	controls []*control
}

func newForm(sel *goquery.Selection) *Form {
	f := &Form{
		action:  sel.AttrOr("action", ""),
		method:  strings.ToUpper(strings.TrimSpace(sel.AttrOr("method", http.MethodGet))),
		enctype: strings.ToLower(strings.TrimSpace(sel.AttrOr("enctype", ""))),
	}

	sel.Find("input, select, textarea, button").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		name := getAttr(n, "name")
		if name == "" {
			return
		}
		c := &control{
			tag:      n.Data,
			name:     name,
			disabled: hasAttr(n, "disabled"),
		}

		switch n.Data {
		case "input":
			c.kind = strings.ToLower(getAttr(n, "type"))
			if c.kind == "" {
				c.kind = "text"
			}
			c.value = getAttr(n, "value")
			if (c.kind == "checkbox" || c.kind == "radio") && c.value == "" && !hasAttr(n, "value") {
				c.value = "on"
			}
			c.checked = hasAttr(n, "checked")
		case "button":
			c.kind = strings.ToLower(getAttr(n, "type"))
			if c.kind == "" {
				c.kind = "submit"
			}
			c.value = getAttr(n, "value")
		case "select":
			c.kind = "select"
			first, selected := "", ""
			s.Find("option").Each(func(i int, o *goquery.Selection) {
				v, ok := o.Attr("value")
				if !ok {
					v = strings.TrimSpace(o.Text())
				}
				c.options = append(c.options, v)
				if i == 0 {
					first = v
				}
				if _, ok := o.Attr("selected"); ok && selected == "" {
					selected = v
				}
			})
			if selected != "" {
				c.value = selected
			} else {
				c.value = first
			}
		case "textarea":
			c.kind = "textarea"
			c.value = s.Text()
		}

		f.controls = append(f.controls, c)
	})

	return f
}

// Action returns the raw action attribute.
func (f *Form) Action() string {
	return f.action
}

// SetAction replaces the action attribute.
func (f *Form) SetAction(action string) {
	f.action = action
}

// Method returns the upper-cased submission method, GET or POST.
func (f *Form) Method() string {
	if f.method == http.MethodPost {
		return http.MethodPost
	}
	return http.MethodGet
}

// Set assigns value to the control called name.
//
// For a select the value must be one of its option values. For radio buttons
// and checkboxes the control whose value matches is checked.
func (f *Form) Set(name, value string) error {
	var matches []*control
	for _, c := range f.controls {
		if c.name == name {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}

	first := matches[0]
	switch first.kind {
	case "select":
		for _, opt := range first.options {
			if opt == value {
				first.value = value
				return nil
			}
		}
		return fmt.Errorf("no option %q in select %q", value, name)
	case "radio", "checkbox":
		found := false
		for _, c := range matches {
			if c.value == value {
				c.checked = true
				found = true
			} else if c.kind == "radio" {
				c.checked = false
			}
		}
		if !found {
			return fmt.Errorf("no %s %q with value %q", first.kind, name, value)
		}
		return nil
	default:
		first.value = value
		return nil
	}
}

// Get returns the current value of the first control called name.
func (f *Form) Get(name string) (string, bool) {
	for _, c := range f.controls {
		if c.name == name {
			return c.value, true
		}
	}
	return "", false
}

// Values returns the form data set a browser would submit. Urlencoded bodies
// sort it by name; multipart bodies keep the order of each name's first control.
// The first named submit button is included, as if the form was submitted with Enter.
func (f *Form) Values() url.Values {
	values := url.Values{}
	submitted := false
	for _, c := range f.controls {
		if c.disabled {
			continue
		}
		switch c.kind {
		case "checkbox", "radio":
			if c.checked {
				values.Add(c.name, c.value)
			}
		case "submit", "image":
			if !submitted {
				values.Add(c.name, c.value)
				submitted = true
			}
		case "file", "reset", "button":
		case "select":
			if len(c.options) > 0 {
				values.Add(c.name, c.value)
			}
		default:
			values.Add(c.name, c.value)
		}
	}
	return values
}

// encode serializes values for a POST body according to the form enctype.
func (f *Form) encode(values url.Values) (io.Reader, string, error) {
	if f.enctype != "multipart/form-data" {
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, c := range f.controls {
		for _, v := range values[c.name] {
			if err := w.WriteField(c.name, v); err != nil {
				return nil, "", err
			}
		}
		delete(values, c.name)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
