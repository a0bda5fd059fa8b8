package index

import (
	"unicode"
	"unicode/utf8"
)

type Token struct {
	Text []byte
}

// StandardTokenizer splits on whitespace and punctuation and lower cases
// every rune.
type StandardTokenizer struct {
	input      []byte
	inputIndex int
	token      Token
	buffer     []byte
}

func NewStandardTokenizer() *StandardTokenizer {
	return &StandardTokenizer{
		buffer: make([]byte, 0, 100),
	}
}

func (t *StandardTokenizer) Reset(input []byte) {
	t.input = input
	t.inputIndex = 0
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// Token is valid until the next call to NextToken
func (t *StandardTokenizer) NextToken() (*Token, bool) {
	t.buffer = t.buffer[:0]

	for t.inputIndex < len(t.input) {
		r, size := utf8.DecodeRune(t.input[t.inputIndex:])
		t.inputIndex += size

		// TODO: apply unicode normalization (NFKC) before lower casing
		r = unicode.ToLower(r)

		if !isSeparator(r) {
			t.buffer = utf8.AppendRune(t.buffer, r)
			continue
		}

		if len(t.buffer) > 0 {
			break
		}
	}

	if len(t.buffer) == 0 {
		return nil, false
	}

	t.token.Text = t.buffer
	return &t.token, true
}
