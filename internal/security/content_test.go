package security

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSource(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		binary  bool
	}{
		{"javascript", []byte("export function add(a, b) {\n\treturn a + b\n}\n"), false},
		{"empty", nil, false},
		{"utf8 text", []byte("const greeting = 'héllo wörld'\n"), false},
		{"png disguised as ts", append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "rest"...), true},
		{"elf", append([]byte{0x7F, 'E', 'L', 'F'}, bytes.Repeat([]byte("x"), 100)...), true},
		{"control bytes", bytes.Repeat([]byte{0x01, 0x02, 'a'}, 50), true},
		{"scattered nul", append(bytes.Repeat([]byte("abcdefghi\x00"), 20), '\n'), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSource(tt.content)
			if tt.binary {
				assert.True(t, errors.Is(err, ErrBinary), "expected ErrBinary, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckSourceSignatureName(t *testing.T) {
	err := CheckSource([]byte("%PDF-1.7\n"))
	assert.ErrorContains(t, err, "PDF document signature")
}

func TestCheckSourceInspectsHeaderOnly(t *testing.T) {
	content := append(bytes.Repeat([]byte("a"), HeaderSize), bytes.Repeat([]byte{0x01}, HeaderSize)...)
	assert.NoError(t, CheckSource(content))
}
