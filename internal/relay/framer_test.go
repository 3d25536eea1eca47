package relay

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushAll(t *testing.T, framer *LineFramer, chunks ...[]byte) []string {
	t.Helper()

	var lines []string
	for _, chunk := range chunks {
		out, err := framer.Push(chunk)
		require.NoError(t, err)
		lines = append(lines, out...)
	}
	out, err := framer.Flush()
	require.NoError(t, err)
	return append(lines, out...)
}

func TestLineFramerSplitsCompleteLines(t *testing.T) {
	t.Parallel()

	framer := NewLineFramer()

	lines, err := framer.Push([]byte("{\"a\":1}\n{\"b\":2}\n{\"c\""))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, lines)

	lines, err = framer.Push([]byte(":3}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"c":3}`}, lines)

	lines, err = framer.Flush()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLineFramerTrimsAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	lines := pushAll(t, NewLineFramer(), []byte("  one \r\n\n   \n\ttwo\r\n"))
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestLineFramerFlushesTrailingFragment(t *testing.T) {
	t.Parallel()

	lines := pushAll(t, NewLineFramer(), []byte("first\nlast without newline  "))
	assert.Equal(t, []string{"first", "last without newline"}, lines)
}

func TestLineFramerFlushSkipsWhitespaceRemainder(t *testing.T) {
	t.Parallel()

	lines := pushAll(t, NewLineFramer(), []byte("only\n \t "))
	assert.Equal(t, []string{"only"}, lines)
}

func TestLineFramerKeepsMultiByteCharactersSplitAcrossChunks(t *testing.T) {
	t.Parallel()

	text := []byte("café → \U0001F600\n")
	for cut := 1; cut < len(text); cut++ {
		lines := pushAll(t, NewLineFramer(), text[:cut], text[cut:])
		assert.Equal(t, []string{"café → \U0001F600"}, lines, "cut at %d", cut)
	}
}

func TestLineFramerByteAtATime(t *testing.T) {
	t.Parallel()

	text := []byte("über\nnaïve\n")
	chunks := make([][]byte, 0, len(text))
	for i := range text {
		chunks = append(chunks, text[i:i+1])
	}

	lines := pushAll(t, NewLineFramer(), chunks...)
	assert.Equal(t, []string{"über", "naïve"}, lines)
}

func TestLineFramerReplacesInvalidBytes(t *testing.T) {
	t.Parallel()

	lines := pushAll(t, NewLineFramer(), []byte("ok\xff\n"), []byte("tail\xe2\x82"))
	require.Len(t, lines, 2)
	assert.Equal(t, "ok\uFFFD", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "tail\uFFFD"), lines[1])
	assert.True(t, utf8.ValidString(lines[1]))
}

func TestBoundedLineFramerRejectsRunawayLine(t *testing.T) {
	t.Parallel()

	framer := NewBoundedLineFramer(8)

	lines, err := framer.Push([]byte("short\nabcd"))
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, lines)

	_, err = framer.Push([]byte("efgh"))
	require.NoError(t, err)

	_, err = framer.Push([]byte("i"))
	require.ErrorIs(t, err, ErrLineTooLong)
}

func TestBoundedLineFramerReturnsCompletedLinesWithOverflow(t *testing.T) {
	t.Parallel()

	framer := NewBoundedLineFramer(4)

	lines, err := framer.Push([]byte("ok\n0123456789"))
	require.ErrorIs(t, err, ErrLineTooLong)
	assert.Equal(t, []string{"ok"}, lines)
}

func TestLineFramerUnboundedByDefault(t *testing.T) {
	t.Parallel()

	framer := NewLineFramer()
	for i := 0; i < 64; i++ {
		lines, err := framer.Push([]byte(strings.Repeat("x", 1024)))
		require.NoError(t, err)
		require.Empty(t, lines)
	}

	lines, err := framer.Flush()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 64*1024)
}
