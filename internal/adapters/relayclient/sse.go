package relayclient

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

type event struct {
	Type string
	Data string
}

// eventScanner reads blank-line delimited SSE events. Only the "event" and
// "data" fields are kept; comments and other fields are skipped.
type eventScanner struct {
	reader  *bufio.Reader
	current event
	err     error
}

func newEventScanner(r io.Reader) *eventScanner {
	return &eventScanner{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next event. It returns false at the end of the
// stream or on a read error; Err tells them apart.
func (s *eventScanner) Next() bool {
	if s.err != nil {
		return false
	}

	s.current = event{}
	var dataLines []string
	var eventType string
	seen := false

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			s.err = err
			return false
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				eventType = value
				seen = true
			case "data":
				dataLines = append(dataLines, value)
				seen = true
			}
		}

		if err != nil {
			s.err = io.EOF
			if seen {
				s.current = event{Type: eventType, Data: strings.Join(dataLines, "\n")}
				return true
			}
			return false
		}

		if line == "" && seen {
			s.current = event{Type: eventType, Data: strings.Join(dataLines, "\n")}
			return true
		}
	}
}

func (s *eventScanner) Event() event {
	return s.current
}

func (s *eventScanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
