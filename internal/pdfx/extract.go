// Package pdfx turns uploaded resume PDFs into plain text. Extraction is
// bounded in both output size and wall-clock time; optimization of oversized
// pages is strictly best-effort and never blocks the pipeline.
package pdfx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	// maxExtractBytes caps total extracted text to bound memory and the
	// size of the downstream model prompt.
	maxExtractBytes = 1 << 20

	defaultExtractTimeout = 30 * time.Second
)

var (
	// ErrParse means the payload is not a readable PDF. User-correctable.
	ErrParse = errors.New("failed to parse pdf")
	// ErrTimeout means extraction exceeded its time budget.
	ErrTimeout = errors.New("pdf extraction timed out")
	// ErrEmptyContent means the PDF parsed but contains no readable text.
	ErrEmptyContent = errors.New("no text content found in pdf")
)

// IsExtractionError reports whether err belongs to the extraction taxonomy.
func IsExtractionError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrEmptyContent)
}

// ExtractText extracts all readable text from a PDF payload. Pages are joined
// by a line break, words within a page by single spaces, and whitespace is
// normalized. Output is truncated at the extraction cap.
func ExtractText(ctx context.Context, data []byte) (string, error) {
	timeout := defaultExtractTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return "", ErrTimeout
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := extractAll(data)
		done <- result{text: text, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ErrTimeout
	case <-timer.C:
		return "", ErrTimeout
	}
}

func extractAll(data []byte) (text string, err error) {
	// The parser panics on some malformed files; treat that as a parse error.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = ErrParse
		}
	}()

	reader, parseErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if parseErr != nil {
		return "", ErrParse
	}

	acc := newTextAccumulator(maxExtractBytes)
	for i := 1; i <= reader.NumPage() && !acc.full; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		acc.add(collapseWhitespace(extractPage(page)))
	}

	out := acc.text()
	if out == "" {
		return "", ErrEmptyContent
	}
	return out, nil
}

// textAccumulator joins page texts with line breaks up to a byte cap. Once
// the cap is hit the current page is cut and trimmed, and no further pages
// are extracted.
type textAccumulator struct {
	limit int
	total int
	full  bool
	pages []string
}

func newTextAccumulator(limit int) *textAccumulator {
	return &textAccumulator{limit: limit}
}

func (a *textAccumulator) add(pageText string) {
	if a.full || pageText == "" {
		return
	}
	if a.total+len(pageText) > a.limit {
		pageText = strings.TrimSpace(pageText[:a.limit-a.total])
		a.full = true
		if pageText == "" {
			return
		}
	}
	a.total += len(pageText)
	a.pages = append(a.pages, pageText)
}

func (a *textAccumulator) text() string {
	return strings.TrimSpace(strings.Join(a.pages, "\n"))
}

// extractPage prefers decoded plain text and falls back to the raw content
// runs when decoding fails, so one undecodable run never aborts the page.
func extractPage(page pdf.Page) string {
	text, err := page.GetPlainText(nil)
	if err == nil {
		return text
	}

	var b strings.Builder
	for _, item := range page.Content().Text {
		if item.S == "" {
			continue
		}
		b.WriteString(item.S)
		b.WriteString(" ")
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
