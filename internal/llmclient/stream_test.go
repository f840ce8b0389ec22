package llmclient

import (
	"io"
	"strings"
	"testing"

	"writeflow/internal/tester"
)

func streamFromFrames(frames string) *Stream {
	return NewStream(io.NopCloser(strings.NewReader(frames)))
}

func TestStream_DeltasAccumulateInOrder(t *testing.T) {
	s := streamFromFrames("" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
		"data: [DONE]\n\n")

	first, err := s.Recv()
	tester.NoErr(t, err)
	tester.Eq(t, first, "Hel")

	second, err := s.Recv()
	tester.NoErr(t, err)
	tester.Eq(t, second, "lo")

	_, err = s.Recv()
	tester.Eq(t, err, io.EOF)
}

func TestStream_DoneFrameTerminates(t *testing.T) {
	s := streamFromFrames("data: [DONE]\n\n")
	_, err := s.Recv()
	tester.Eq(t, err, io.EOF)

	// Recv after EOF keeps returning EOF.
	_, err = s.Recv()
	tester.Eq(t, err, io.EOF)
}

func TestStream_MalformedFramesAreSkipped(t *testing.T) {
	s := streamFromFrames("" +
		"data: {not json at all\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"kept\"}}]}\n\n" +
		"data: [DONE]\n\n")

	out, err := s.Drain()
	tester.NoErr(t, err)
	tester.Eq(t, out, "kept")
}

func TestStream_EmptyDeltasAreSkipped(t *testing.T) {
	s := streamFromFrames("" +
		"data: {\"choices\":[{\"delta\":{}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n" +
		"data: [DONE]\n\n")

	out, err := s.Drain()
	tester.NoErr(t, err)
	tester.Eq(t, out, "x")
}

func TestStream_TransportEndWithoutDoneIsEOF(t *testing.T) {
	s := streamFromFrames("data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
	out, err := s.Drain()
	tester.NoErr(t, err)
	tester.Eq(t, out, "partial")
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	s := streamFromFrames("data: [DONE]\n\n")
	tester.NoErr(t, s.Close())
	tester.NoErr(t, s.Close())
	_, err := s.Recv()
	tester.Eq(t, err, io.EOF)
}
