package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Category
	}{
		// JSON
		{"application/json", "application/json", JSON},
		{"json with charset", "application/json; charset=utf-8", JSON},

		// HTML
		{"text/html", "text/html", HTML},
		{"html with charset", "text/html; charset=utf-8", HTML},
		{"xhtml", "application/xhtml+xml", HTML},

		// XML
		{"application/xml", "application/xml", XML},
		{"text/xml", "text/xml", XML},
		{"vendor xml", "application/vnd.foo+xml", XML},

		// Delimited
		{"text/csv", "text/csv", Delimited},
		{"csv with charset", "text/csv; charset=utf-8", Delimited},
		{"application/csv", "application/csv", Delimited},
		{"tsv", "text/tab-separated-values", Delimited},
		{"excel csv", "application/vnd.ms-excel", Delimited},

		// Text
		{"text/plain", "text/plain", Text},

		// Binary
		{"octet-stream", "application/octet-stream", Binary},
		{"zip", "application/zip", Binary},

		// Edge cases
		{"empty", "", Binary},
		{"uppercase", "Text/CSV", Delimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}
