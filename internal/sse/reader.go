package sse

import (
	"bufio"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxEventSize      = 1024 * 1024
)

// Reader reads SSE events from an upstream body.
type Reader struct {
	scanner *bufio.Scanner

	current  *Event
	hasData  bool
	seenData bool
}

// NewReader returns a Reader parsing events from src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxEventSize)

	return &Reader{
		scanner: scanner,
		current: &Event{},
	}
}

// Next blocks until a complete event is available.
// It returns io.EOF once the source is exhausted. An event left open by a
// source that ends without a trailing blank line is still returned first.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if r.hasData {
				return r.take(), nil
			}
			continue
		}

		// Comment lines double as keep-alives.
		if strings.HasPrefix(line, ":") {
			continue
		}

		r.parseLine(line)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if r.hasData {
		return r.take(), nil
	}

	return nil, io.EOF
}

// parseLine accumulates one "field:value" line into the current event.
// A single space after the colon is stripped.
func (r *Reader) parseLine(line string) {
	field, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "data":
		if r.seenData {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
		r.seenData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	default:
		// "retry" and unknown fields are ignored.
	}
}

func (r *Reader) take() *Event {
	ev := r.current
	r.current = &Event{}
	r.hasData = false
	r.seenData = false
	return ev
}
