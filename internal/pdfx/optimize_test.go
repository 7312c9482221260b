package pdfx

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ledongthuc/pdf"
)

// buildPDF assembles a minimal single-page document with a correct xref
// table, so the library parses it like any real file.
func buildPDF(t *testing.T, mediaBox string) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [" + mediaBox + "] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefPos)
	return buf.Bytes()
}

func pageBox(t *testing.T, data []byte) (width, height float64) {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse optimized pdf: %v", err)
	}
	box := reader.Page(1).V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		t.Fatalf("missing MediaBox after optimization")
	}
	return box.Index(2).Float64() - box.Index(0).Float64(),
		box.Index(3).Float64() - box.Index(1).Float64()
}

func TestOptimizeLeavesSmallPagesUntouched(t *testing.T) {
	data := buildPDF(t, "0 0 612 792")
	out := Optimize(data)
	if !bytes.Equal(out, data) {
		t.Fatalf("page within the threshold must not be modified")
	}
}

func TestOptimizeScalesOversizedPage(t *testing.T) {
	data := buildPDF(t, "0 0 1200 900")
	out := Optimize(data)
	if bytes.Equal(out, data) {
		t.Fatalf("expected oversized page to be rewritten")
	}
	if len(out) != len(data) {
		t.Fatalf("rewrite must preserve byte length, got %d want %d", len(out), len(data))
	}

	width, height := pageBox(t, out)
	if width > maxPageDimension || height > maxPageDimension {
		t.Fatalf("expected dimensions within threshold, got %.2fx%.2f", width, height)
	}
	// Isotropic: 1200x900 scaled by 1000/1200 keeps the 4:3 ratio.
	if width != 1000 || height != 750 {
		t.Fatalf("expected 1000x750, got %.2fx%.2f", width, height)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	data := buildPDF(t, "0 0 1200 900")
	once := Optimize(data)
	twice := Optimize(once)
	if !bytes.Equal(once, twice) {
		t.Fatalf("second optimization pass must be a no-op")
	}
}

func TestOptimizeReturnsOriginalOnGarbage(t *testing.T) {
	data := []byte("definitely not a pdf")
	out := Optimize(data)
	if !bytes.Equal(out, data) {
		t.Fatalf("unparseable input must pass through unchanged")
	}
}
