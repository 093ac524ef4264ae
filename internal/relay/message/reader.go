package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrMalformed - line is not a valid UTF-8 text.
var ErrMalformed = errors.New("message: malformed line")

// Reader - splits inbound byte stream into newline-delimited text lines.
type Reader struct {
	r *bufio.Reader
}

// NewReader - builds Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine - returns next line without "\n" or "\r\n" terminator.
// Unterminated tail of the stream is returned as the last line before io.EOF.
// If the line is not valid UTF-8 returned error wraps ErrMalformed.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return "", err
	}
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if i := FirstInvalidRune(line); i > -1 {
		return "", fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrMalformed, i)
	}
	return string(line), nil
}

// FirstInvalidRune - returns index of the first byte which does not start a well-encoded rune.
// Returns -1 if s is valid UTF-8.
func FirstInvalidRune(s []byte) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRune(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
