package relay

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	readChunkSize = 32 * 1024
	closeEvent    = "event: close\ndata: [DONE]\n\n"
)

// eventWriter writes SSE frames and flushes each batch to the client.
type eventWriter struct {
	w          io.Writer
	controller *http.ResponseController
}

func newEventWriter(w http.ResponseWriter) *eventWriter {
	return &eventWriter{w: w, controller: http.NewResponseController(w)}
}

func (e *eventWriter) data(lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(e.w, "data: "+line+"\n\n"); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return e.flush()
}

func (e *eventWriter) close() error {
	if _, err := io.WriteString(e.w, closeEvent); err != nil {
		return fmt.Errorf("write close event: %w", err)
	}
	return e.flush()
}

func (e *eventWriter) flush() error {
	if err := e.controller.Flush(); err != nil {
		return fmt.Errorf("flush events: %w", err)
	}
	return nil
}

// pump pulls the upstream body chunk by chunk through a LineFramer until
// EOF, writing one data event per line and the close event at the end.
// A partial line longer than maxLine bytes fails the stream.
func pump(body io.Reader, events *eventWriter, maxLine int) (int, error) {
	framer := NewBoundedLineFramer(maxLine)
	buf := make([]byte, readChunkSize)
	sent := 0

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			lines, pushErr := framer.Push(buf[:n])
			if err := events.data(lines); err != nil {
				return sent, err
			}
			sent += len(lines)
			if pushErr != nil {
				return sent, pushErr
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return sent, fmt.Errorf("read upstream body: %w", readErr)
		}
	}

	lines, err := framer.Flush()
	if err != nil {
		return sent, err
	}
	if err := events.data(lines); err != nil {
		return sent, err
	}
	sent += len(lines)

	return sent, events.close()
}
