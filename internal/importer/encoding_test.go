package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, EncodingASCII, DetectEncoding([]byte("plain text")))
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("café")))
	// 0xE9 is é in ISO-8859-1 and invalid standalone UTF-8
	assert.Equal(t, EncodingISO88591, DetectEncoding([]byte{'c', 'a', 'f', 0xE9}))
	// 0x92 is a curly apostrophe only Windows-1252 defines
	assert.Equal(t, EncodingWindows1252, DetectEncoding([]byte{'i', 't', 0x92, 's'}))
}

func TestDecodeToUTF8(t *testing.T) {
	text, warnings, err := DecodeToUTF8([]byte("already fine"))
	require.NoError(t, err)
	assert.Equal(t, "already fine", text)
	assert.Empty(t, warnings)

	text, warnings, err = DecodeToUTF8([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], EncodingISO88591)

	text, warnings, err = DecodeToUTF8([]byte{'i', 't', 0x92, 's'})
	require.NoError(t, err)
	assert.Equal(t, "it’s", text)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], EncodingWindows1252)
}

func TestDecodeToUTF8StripsBOM(t *testing.T) {
	text, warnings, err := DecodeToUTF8([]byte{0xEF, 0xBB, 0xBF, 'a', 'b', 'c'})
	require.NoError(t, err)
	assert.Equal(t, "abc", text)
	assert.Empty(t, warnings)
}

func TestFixMojibake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"word-internal apostrophe", "itÕs", "it’s"},
		{"opening double quote", "said Òhello world", "said “hello world"},
		{"closing double quote", "hello worldÓ she said", "hello world” she said"},
		{"standalone dash", "one Ñ two", "one — two"},
		{"clean text untouched", "hotel controle", "hotel controle"},
		{"accented French untouched", "hôtel contrôle général", "hôtel contrôle général"},
		{"uppercase accent mid-word untouched", "CÔTE D'IVOIRE", "CÔTE D'IVOIRE"},
		{"Spanish n untouched in words", "señor Muñoz", "señor Muñoz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FixMojibake(tt.input))
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma", "a,b,c\n1,2,3", ','},
		{"semicolon", "a;b;c", ';'},
		{"tab", "a\tb\tc", '\t'},
		{"pipe", "a|b|c", '|'},
		{"tie resolves to candidate order", "a,b;c", ','},
		{"first non-empty line wins", "\n\nx;y;z\na,b", ';'},
		{"no delimiter defaults to comma", "single", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.input))
		})
	}
}
