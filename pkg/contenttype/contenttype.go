// Package contenttype classifies the Content-Type of report export responses.
package contenttype

import (
	"mime"
	"strings"
)

// Category represents a broad content-type classification.
type Category string

const (
	JSON      Category = "json"
	XML       Category = "xml"
	HTML      Category = "html"
	Delimited Category = "delimited"
	Text      Category = "text"
	Binary    Category = "binary"
)

// Classify returns the broad content category for a content-type header value.
// Uses mime.ParseMediaType to strip parameters (charset, boundary, etc.)
// before matching. Falls back to strings.ToLower for malformed values.
// Returns Binary for empty content-type strings.
func Classify(contentType string) Category {
	if contentType == "" {
		return Binary
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	if strings.Contains(mediaType, "json") {
		return JSON
	}

	// HTML: text/html, application/xhtml+xml
	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return HTML
	}

	if strings.Contains(mediaType, "xml") {
		return XML
	}

	// Delimited exports: text/csv, text/tab-separated-values, application/csv,
	// and the vnd.ms-excel type some servers attach to CSV downloads.
	if strings.Contains(mediaType, "csv") ||
		mediaType == "text/tab-separated-values" ||
		mediaType == "application/vnd.ms-excel" {
		return Delimited
	}

	if strings.HasPrefix(mediaType, "text/") {
		return Text
	}

	return Binary
}
