package llmclient

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Stream is a lazy, finite, non-restartable sequence of content deltas read
// from a server-sent-event response body. The consumer drives iteration via
// Recv; closing before exhaustion releases the underlying connection.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

const doneFrame = "data: [DONE]"

// NewStream wraps an SSE response body. Exposed so tests and fakes can build
// streams from literal frame data.
func NewStream(body io.ReadCloser) *Stream {
	sc := bufio.NewScanner(body)
	// Single deltas are tiny, but providers may batch frames into one line.
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Stream{body: body, scanner: sc}
}

type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Recv returns the next non-empty content delta. It returns io.EOF once the
// terminal [DONE] frame is seen or the transport signals completion, and any
// transport error before that. Malformed JSON frames are skipped so that
// boundary-split chunks do not kill the stream.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		if line == doneFrame {
			s.done = true
			s.body.Close()
			return "", io.EOF
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame streamFrame
		if err := json.Unmarshal([]byte(line[len("data: "):]), &frame); err != nil {
			continue
		}
		if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == "" {
			continue
		}
		return frame.Choices[0].Delta.Content, nil
	}
	s.done = true
	s.body.Close()
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

// Drain reads the stream to completion and returns the accumulated text.
// The stream is closed when Drain returns.
func (s *Stream) Drain() (string, error) {
	defer s.Close()
	var b strings.Builder
	for {
		delta, err := s.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(delta)
	}
}
