package sse_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/sse"
)

func readAll(t *testing.T, src string) []*sse.Event {
	t.Helper()

	r := sse.NewReader(strings.NewReader(src))
	var events []*sse.Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestReader_Next(t *testing.T) {
	t.Run("should parse a single event", func(t *testing.T) {
		events := readAll(t, "data: hello world\n\n")

		require.Len(t, events, 1)
		require.Equal(t, "hello world", events[0].Data)
		require.Empty(t, events[0].Type)
	})

	t.Run("should parse typed events in order", func(t *testing.T) {
		events := readAll(t, "event: message_start\ndata: {\"a\":1}\n\nevent: ping\ndata: {}\n\n")

		require.Len(t, events, 2)
		require.Equal(t, "message_start", events[0].Type)
		require.Equal(t, `{"a":1}`, events[0].Data)
		require.Equal(t, "ping", events[1].Type)
	})

	t.Run("should join multiple data lines with newline", func(t *testing.T) {
		events := readAll(t, "data: one\ndata: two\n\n")

		require.Len(t, events, 1)
		require.Equal(t, "one\ntwo", events[0].Data)
	})

	t.Run("should keep the separator after an empty data line", func(t *testing.T) {
		events := readAll(t, "data:\ndata: x\n\nevent: e\ndata: y\n\n")

		require.Len(t, events, 2)
		require.Equal(t, "\nx", events[0].Data)
		require.Equal(t, "y", events[1].Data)
	})

	t.Run("should skip comments and extra blank lines", func(t *testing.T) {
		events := readAll(t, "\n\n: keep-alive\n\ndata: x\n\n\n")

		require.Len(t, events, 1)
		require.Equal(t, "x", events[0].Data)
	})

	t.Run("should accept CRLF line endings", func(t *testing.T) {
		events := readAll(t, "event: ping\r\ndata: {}\r\n\r\n")

		require.Len(t, events, 1)
		require.Equal(t, "ping", events[0].Type)
		require.Equal(t, "{}", events[0].Data)
	})

	t.Run("should return a trailing event without blank line", func(t *testing.T) {
		events := readAll(t, "data: first\n\ndata: last")

		require.Len(t, events, 2)
		require.Equal(t, "last", events[1].Data)
	})

	t.Run("should keep id and recognise the done sentinel", func(t *testing.T) {
		events := readAll(t, "id: 7\ndata: [DONE]\n\n")

		require.Len(t, events, 1)
		require.Equal(t, "7", events[0].ID)
		require.True(t, events[0].IsDone())
	})

	t.Run("should return EOF on empty input", func(t *testing.T) {
		_, err := sse.NewReader(strings.NewReader("")).Next()
		require.ErrorIs(t, err, io.EOF)
	})
}
