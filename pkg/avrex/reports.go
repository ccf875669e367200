package avrex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/usestring/avrex/pkg/contenttype"
)

// chunkSize is the read buffer used when streaming an export.
const chunkSize = 32 * 1024

// DownloadRequest describes a single report export.
type DownloadRequest struct {
	Report string // report id or exact label
	Format string // format id, exact label, or one of FormatAliases
	From   string // start date, passed to the portal as is; empty leaves the field untouched
	To     string // end date, same rules as From
}

// ListReports returns the reports available to the logged in account.
func (c *Client) ListReports(ctx context.Context) (OptionMap, error) {
	page, err := c.browser.Open(ctx, c.reportsURL)
	if err != nil {
		return nil, fmt.Errorf("opening reports page: %w", err)
	}
	return scrapeOptions(page.Document, reportOptions), nil
}

// ListFormats returns the export formats offered on the reports page.
func (c *Client) ListFormats(ctx context.Context) (OptionMap, error) {
	page, err := c.browser.Open(ctx, c.reportsURL)
	if err != nil {
		return nil, fmt.Errorf("opening reports page: %w", err)
	}
	return scrapeOptions(page.Document, formatOptions), nil
}

// DownloadReport requests an export and streams it to w as it arrives.
//
// The report and format are resolved against the options currently offered by
// the portal, before anything is submitted. w is not closed. On error w may
// hold a partial export.
func (c *Client) DownloadReport(ctx context.Context, req DownloadRequest, w io.Writer) error {
	page, err := c.browser.Open(ctx, c.reportsURL)
	if err != nil {
		return fmt.Errorf("opening reports page: %w", err)
	}

	reportID, err := NewChoices(KindReport, scrapeOptions(page.Document, reportOptions), nil).Resolve(req.Report)
	if err != nil {
		return err
	}
	formatID, err := NewChoices(KindFormat, scrapeOptions(page.Document, formatOptions), FormatAliases).Resolve(req.Format)
	if err != nil {
		return err
	}

	form, err := c.browser.SelectForm(formSelector)
	if err != nil {
		return fmt.Errorf("selecting report form: %w", err)
	}
	if err := form.Set(fieldReport, reportID); err != nil {
		return fmt.Errorf("setting report: %w", err)
	}
	if req.From != "" {
		if err := form.Set(fieldStart, req.From); err != nil {
			return fmt.Errorf("setting start date: %w", err)
		}
	}
	if req.To != "" {
		if err := form.Set(fieldEnd, req.To); err != nil {
			return fmt.Errorf("setting end date: %w", err)
		}
	}
	if err := form.Set(fieldFormat, formatID); err != nil {
		return fmt.Errorf("setting format: %w", err)
	}
	// The portal renders the action with surrounding whitespace.
	form.SetAction(strings.TrimSpace(form.Action()))

	start := time.Now()
	resp, err := c.browser.SubmitStream(ctx, form)
	if err != nil {
		return fmt.Errorf("requesting report %s: %w", reportID, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	category := contenttype.Classify(contentType)
	if category == contenttype.HTML {
		slog.Warn("portal answered the export with an HTML page",
			slog.String("report_id", reportID),
			slog.String("format_id", formatID),
		)
	}

	n, err := copyChunks(w, resp.Body)
	if err != nil {
		return fmt.Errorf("downloading report %s: %w", reportID, err)
	}

	slog.Info("report downloaded",
		slog.String("report_id", reportID),
		slog.String("format_id", formatID),
		slog.String("content_type", string(category)),
		slog.Int64("bytes", n),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// copyChunks writes every non-empty read from r to w in order.
func copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, fmt.Errorf("writing: %w", werr)
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("reading: %w", rerr)
		}
	}
}
