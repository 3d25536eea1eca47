package relay

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineFramer turns an upstream byte stream into trimmed, non-empty lines.
// Bytes are decoded as UTF-8 incrementally: a multi-byte sequence split
// across two chunks is held back until the rest arrives, and ill-formed
// bytes become U+FFFD. The trailing partial line stays buffered until a
// newline or Flush.
type LineFramer struct {
	decoder transform.Transformer
	pending []byte
	buffer  strings.Builder
	maxLine int
}

var ErrLineTooLong = errors.New("upstream line exceeds limit")

func NewLineFramer() *LineFramer {
	return &LineFramer{decoder: unicode.UTF8.NewDecoder()}
}

// NewBoundedLineFramer fails Push once a partial line grows past maxLine
// bytes. Zero or less means no limit.
func NewBoundedLineFramer(maxLine int) *LineFramer {
	f := NewLineFramer()
	f.maxLine = maxLine
	return f
}

// Push consumes one chunk and returns the lines it completed.
func (f *LineFramer) Push(chunk []byte) ([]string, error) {
	text, err := f.decode(chunk, false)
	if err != nil {
		return nil, err
	}
	f.buffer.WriteString(text)

	if strings.IndexByte(text, '\n') < 0 {
		return nil, f.checkPartial()
	}

	buffered := f.buffer.String()
	cut := strings.LastIndexByte(buffered, '\n')

	f.buffer.Reset()
	f.buffer.WriteString(buffered[cut+1:])

	return splitLines(buffered[:cut]), f.checkPartial()
}

func (f *LineFramer) checkPartial() error {
	if f.maxLine > 0 && f.buffer.Len() > f.maxLine {
		return fmt.Errorf("%w: %d bytes without a newline", ErrLineTooLong, f.buffer.Len())
	}
	return nil
}

// Flush ends the stream and returns whatever non-blank text is left.
func (f *LineFramer) Flush() ([]string, error) {
	text, err := f.decode(nil, true)
	if err != nil {
		return nil, err
	}
	f.buffer.WriteString(text)

	rest := f.buffer.String()
	f.buffer.Reset()
	f.decoder.Reset()

	return splitLines(rest), nil
}

func (f *LineFramer) decode(chunk []byte, atEOF bool) (string, error) {
	src := append(f.pending, chunk...)
	f.pending = nil
	if len(src) == 0 {
		return "", nil
	}

	var out strings.Builder
	dst := make([]byte, len(src)*utf8.UTFMax+utf8.UTFMax)
	for {
		nDst, nSrc, err := f.decoder.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String(), nil
		case errors.Is(err, transform.ErrShortSrc):
			f.pending = append([]byte(nil), src...)
			return out.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, len(dst)*2)
			}
		default:
			return "", fmt.Errorf("decode upstream bytes: %w", err)
		}
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, part := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
