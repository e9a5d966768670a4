// Package pdfextract pulls plain text out of PDF bytes without a PDF
// library. It scans the raw byte stream for text-showing operators and
// falls back to harvesting printable runs when none are found.
//
// Known limitation: documents whose content streams are compressed
// (/FlateDecode) or that use custom font encodings yield little or no
// text here. That is deliberate; decompression would make this a full
// PDF parser, which it is not.
package pdfextract

import (
	"regexp"
	"strings"
)

// Mode reports which strategy produced the extracted text.
type Mode int

const (
	// ModeStructured means BT/ET text operators were found and decoded.
	ModeStructured Mode = iota
	// ModeHeuristic means no text operators existed and printable-ASCII
	// runs were harvested instead.
	ModeHeuristic
	// ModeEmpty means neither strategy produced any text; the caller
	// should substitute a fallback string before ingesting.
	ModeEmpty
)

func (m Mode) String() string {
	switch m {
	case ModeStructured:
		return "structured"
	case ModeHeuristic:
		return "heuristic"
	default:
		return "empty"
	}
}

var (
	btEtRe    = regexp.MustCompile(`(?s)BT\s*(.*?)\s*ET`)
	tjRe      = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	tjArrayRe = regexp.MustCompile(`(?s)\[(.*?)\]\s*TJ`)
	literalRe = regexp.MustCompile(`\(([^)]*)\)`)

	// Printable-ASCII runs long enough to plausibly be prose.
	readableRe = regexp.MustCompile(`[\x20-\x7E]{20,}`)
	// Runs that are pure PDF syntax rather than text.
	syntaxOnlyRe = regexp.MustCompile(`^[%/<>\[\]{}]+$`)
	objHeaderRe  = regexp.MustCompile(`^\d+\s+\d+\s+obj`)

	wsRe   = regexp.MustCompile(`\s+`)
	ctrlRe = regexp.MustCompile(`[\x00-\x1F\x7F]`)

	// Page dictionary marker. The \b keeps /Type /Pages (the page-tree
	// node) from counting as a page.
	pageMarkerRe = regexp.MustCompile(`/Type\s*/Page\b`)
)

// ExtractText returns the best-effort plain text of the PDF and the mode
// that produced it.
func ExtractText(data []byte) (string, Mode) {
	content := decodeLatin1(data)

	var parts []string
	for _, block := range btEtRe.FindAllStringSubmatch(content, -1) {
		body := block[1]
		for _, m := range tjRe.FindAllStringSubmatch(body, -1) {
			parts = append(parts, decodeEscaped(m[1]))
		}
		for _, arr := range tjArrayRe.FindAllStringSubmatch(body, -1) {
			for _, lit := range literalRe.FindAllStringSubmatch(arr[1], -1) {
				parts = append(parts, decodeEscaped(lit[1]))
			}
		}
	}

	mode := ModeStructured
	if len(parts) == 0 {
		mode = ModeHeuristic
		for _, run := range readableRe.FindAllString(content, -1) {
			if syntaxOnlyRe.MatchString(run) || objHeaderRe.MatchString(run) {
				continue
			}
			parts = append(parts, run)
		}
	}

	result := strings.Join(parts, " ")
	result = wsRe.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)
	result = ctrlRe.ReplaceAllString(result, "")

	if result == "" {
		return "", ModeEmpty
	}
	return result, mode
}

// EstimatePageCount counts /Type /Page dictionary markers. 0 means the
// count is unknown and callers must not overwrite a previously known
// page count with it.
func EstimatePageCount(data []byte) int {
	n := len(pageMarkerRe.FindAllString(decodeLatin1(data), -1))
	if n == 0 {
		return 0
	}
	return max(1, n)
}

// decodeLatin1 maps each byte to the rune of the same value, so string
// indices in the decoded text line up 1:1 with byte offsets. PDF syntax
// markers are ASCII, so regex scanning stays correct regardless of what
// encoding the content streams use internally.
func decodeLatin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// decodeEscaped resolves the PDF literal-string escapes \n \r \t \( \) \\.
func decodeEscaped(s string) string {
	r := strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
	return r.Replace(s)
}
