// Package security screens file content before it reaches a parser.
package security

import (
	"bytes"
	"errors"
	"fmt"
)

// HeaderSize is how much of a file CheckSource inspects.
const HeaderSize = 64 * 1024

// binaryRatio is the share of control bytes above which content is binary.
const binaryRatio = 0.3

var ErrBinary = errors.New("content appears to be binary")

// signatures are magic bytes of formats that are never source text.
var signatures = []struct {
	name  string
	magic []byte
}{
	{"PNG image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG image", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF image", []byte("GIF8")},
	{"PDF document", []byte("%PDF-")},
	{"ZIP archive", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip archive", []byte{0x1F, 0x8B}},
	{"ELF executable", []byte{0x7F, 'E', 'L', 'F'}},
	{"WebAssembly module", []byte{0x00, 'a', 's', 'm'}},
}

// CheckSource returns an error when content is not plausibly source text:
// it starts with a known binary signature, or too much of its header is
// control bytes.
func CheckSource(content []byte) error {
	header := content
	if len(header) > HeaderSize {
		header = header[:HeaderSize]
	}
	for _, s := range signatures {
		if bytes.HasPrefix(header, s.magic) {
			return fmt.Errorf("%w (%s signature)", ErrBinary, s.name)
		}
	}
	if IsBinary(header) {
		return ErrBinary
	}
	return nil
}

// IsBinary reports whether more than 30% of data is control bytes other
// than tab, newline, form feed and carriage return. NUL always counts.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.Count(data, []byte{0}) > len(data)/100 {
		return true
	}
	control := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			control++
		}
	}
	return float64(control)/float64(len(data)) > binaryRatio
}
