package pdfx

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPageDimension is the page size threshold in PDF units. Pages larger than
// this in either direction get scaled down isotropically before extraction.
const maxPageDimension = 1000.0

var mediaBoxPattern = regexp.MustCompile(`/MediaBox\s*\[([^\]]+)\]`)

// Optimize scales down any page whose MediaBox exceeds the size threshold,
// preserving aspect ratio, page count, and content. It is best-effort: on any
// parse or rewrite problem the original bytes are returned unchanged, so a
// failed optimization can never block extraction.
func Optimize(data []byte) []byte {
	if !hasOversizedPage(data) {
		return data
	}

	rewritten, ok := rewriteMediaBoxes(data)
	if !ok {
		return data
	}
	if !sameShape(data, rewritten) {
		return data
	}
	return rewritten
}

// hasOversizedPage parses the document and inspects page boxes. Any failure
// reads as "nothing to do".
func hasOversizedPage(data []byte) (oversized bool) {
	defer func() {
		if rec := recover(); rec != nil {
			oversized = false
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		box := page.V.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		width := box.Index(2).Float64() - box.Index(0).Float64()
		height := box.Index(3).Float64() - box.Index(1).Float64()
		if width > maxPageDimension || height > maxPageDimension {
			return true
		}
	}
	return false
}

// rewriteMediaBoxes scales oversized MediaBox arrays in place. Replacements
// are padded to the original byte length so xref offsets stay valid; a box
// whose scaled form cannot fit aborts the whole rewrite.
func rewriteMediaBoxes(data []byte) ([]byte, bool) {
	matches := mediaBoxPattern.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return data, true
	}

	out := make([]byte, len(data))
	copy(out, data)

	for _, m := range matches {
		start, end := m[2], m[3]
		nums, ok := parseBoxNumbers(string(data[start:end]))
		if !ok {
			return nil, false
		}
		width := nums[2] - nums[0]
		height := nums[3] - nums[1]
		if width <= maxPageDimension && height <= maxPageDimension {
			continue
		}

		scale := maxPageDimension / width
		if s := maxPageDimension / height; s < scale {
			scale = s
		}
		scaled := [4]float64{nums[0] * scale, nums[1] * scale, nums[2] * scale, nums[3] * scale}

		replacement, ok := formatBox(scaled, end-start)
		if !ok {
			return nil, false
		}
		copy(out[start:end], replacement)
	}
	return out, true
}

func parseBoxNumbers(raw string) ([4]float64, bool) {
	var nums [4]float64
	fields := strings.Fields(raw)
	if len(fields) != 4 {
		return nums, false
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nums, false
		}
		nums[i] = v
	}
	return nums, true
}

// formatBox renders the four numbers into exactly width bytes, space-padded,
// dropping precision as needed. Returns false when even integers do not fit.
func formatBox(nums [4]float64, width int) ([]byte, bool) {
	for prec := 2; prec >= 0; prec-- {
		parts := make([]string, 4)
		for i, v := range nums {
			parts[i] = strconv.FormatFloat(v, 'f', prec, 64)
			parts[i] = strings.TrimRight(strings.TrimRight(parts[i], "0"), ".")
			if parts[i] == "" || parts[i] == "-" {
				parts[i] = "0"
			}
		}
		rendered := strings.Join(parts, " ")
		if len(rendered) <= width {
			padded := rendered + strings.Repeat(" ", width-len(rendered))
			return []byte(padded), true
		}
	}
	return nil, false
}

// sameShape verifies a rewritten document still parses with the same page
// count as the original.
func sameShape(original, rewritten []byte) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()

	before, err := pdf.NewReader(bytes.NewReader(original), int64(len(original)))
	if err != nil {
		return false
	}
	after, err := pdf.NewReader(bytes.NewReader(rewritten), int64(len(rewritten)))
	if err != nil {
		return false
	}
	return before.NumPage() == after.NumPage()
}
