package importer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Charset names reported by DetectEncoding.
const (
	EncodingASCII       = "ascii"
	EncodingUTF8        = "utf-8"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding guesses the charset of raw text among the candidate set the
// importer supports. Bytes in the 0x80-0x9F range only carry printable
// characters in Windows-1252, which is what separates it from ISO-8859-1.
func DetectEncoding(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		for _, b := range data {
			if b >= 0x80 {
				return EncodingUTF8
			}
		}
		return EncodingASCII
	}

	for _, b := range data {
		if b >= 0x80 && b <= 0x9F {
			return EncodingWindows1252
		}
	}
	return EncodingISO88591
}

// DecodeToUTF8 strips a leading byte-order mark and converts the input to
// UTF-8. A warning naming the original charset is returned for any input that
// needed conversion.
func DecodeToUTF8(data []byte) (string, []string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	enc := DetectEncoding(data)
	switch enc {
	case EncodingASCII, EncodingUTF8:
		return string(data), nil, nil
	}

	var decoder transform.Transformer
	switch enc {
	case EncodingWindows1252:
		decoder = charmap.Windows1252.NewDecoder()
	case EncodingISO88591:
		decoder = charmap.ISO8859_1.NewDecoder()
	}

	converted, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert %s input to UTF-8: %w", enc, err)
	}

	warning := fmt.Sprintf("file encoding detected as %s and converted to UTF-8", enc)
	return string(converted), []string{warning}, nil
}

// mojibakeRules repair Mac Roman smart punctuation that was mis-decoded as
// Windows-1252. The contexts are deliberately narrow: each rule only fires in
// a position where the Latin letter it replaces could not be legitimate text,
// so accented French or Spanish content passes through untouched.
var mojibakeRules = []struct {
	pattern *regexp.Regexp
	replace string
}{
	// 0xD5 -> apostrophe, seen word-internally ("itÕs")
	{regexp.MustCompile(`(\p{L})Õ(\p{L})`), "$1’$2"},
	// 0xD4 -> opening single quote at a word boundary
	{regexp.MustCompile(`(^|\s)Ô(\p{L})`), "$1‘$2"},
	// 0xD2 -> opening double quote at a word boundary
	{regexp.MustCompile(`(^|\s)Ò(\p{L})`), "$1“$2"},
	// 0xD3 -> closing double quote after a word
	{regexp.MustCompile(`(\p{L})Ó($|[\s.,;:!?])`), "$1”$2"},
	// 0xD0/0xD1 -> en/em dash, only when standing alone between spaces
	{regexp.MustCompile(`(\s)Ð(\s)`), "$1–$2"},
	{regexp.MustCompile(`(\s)Ñ(\s)`), "$1—$2"},
}

// FixMojibake repairs known legacy-Macintosh-via-Windows-1252 glyph damage in
// a cell value. Clean Latin text, accents included, is returned unchanged.
func FixMojibake(s string) string {
	if !strings.ContainsAny(s, "ÒÓÔÕÐÑ") {
		return s
	}
	for _, rule := range mojibakeRules {
		s = rule.pattern.ReplaceAllString(s, rule.replace)
	}
	return s
}

// delimiterCandidates in priority order; ties resolve to the earlier entry.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the field delimiter by counting candidate occurrences
// in the first non-empty line.
func DetectDelimiter(text string) rune {
	var line string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best := delimiterCandidates[0]
	bestCount := 0
	for _, cand := range delimiterCandidates {
		count := strings.Count(line, string(cand))
		if count > bestCount {
			best = cand
			bestCount = count
		}
	}
	return best
}
