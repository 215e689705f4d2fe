package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstAccumulatorEmitsOnEnter(t *testing.T) {
	acc := NewBurstAccumulator(0)
	base := time.Now()

	for i, key := range "X123" {
		_, ok := acc.Press(key, base.Add(time.Duration(i)*10*time.Millisecond))
		assert.False(t, ok)
	}
	code, ok := acc.Press('\n', base.Add(50*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "X123", code)

	// Enter on an empty buffer emits nothing.
	_, ok = acc.Press('\n', base.Add(60*time.Millisecond))
	assert.False(t, ok)
}

func TestBurstAccumulatorResetsOnSlowTyping(t *testing.T) {
	acc := NewBurstAccumulator(100 * time.Millisecond)
	base := time.Now()

	acc.Press('A', base)
	acc.Press('B', base.Add(50*time.Millisecond))
	// A human-speed pause discards what came before.
	acc.Press('C', base.Add(500*time.Millisecond))
	code, ok := acc.Press('\n', base.Add(510*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "C", code)
}

func TestBurstAccumulatorIgnoresUnprintable(t *testing.T) {
	acc := NewBurstAccumulator(0)
	base := time.Now()
	acc.Press('X', base)
	acc.Press('\t', base.Add(time.Millisecond))
	acc.Press(' ', base.Add(2*time.Millisecond))
	acc.Press('1', base.Add(3*time.Millisecond))
	code, ok := acc.Press('\r', base.Add(4*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "X1", code)
}

type fakeStream struct {
	frames [][]byte
}

func (s *fakeStream) Next(ctx context.Context) ([]byte, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeSource struct {
	opened []CameraFacing
	errs   map[CameraFacing]error
	stream *fakeStream
}

func (s *fakeSource) Open(ctx context.Context, facing CameraFacing) (FrameStream, error) {
	s.opened = append(s.opened, facing)
	if err := s.errs[facing]; err != nil {
		return nil, err
	}
	return s.stream, nil
}

type prefixDecoder struct{}

func (prefixDecoder) Decode(frame []byte) (string, bool) {
	if len(frame) > 0 && frame[0] == '#' {
		return string(frame[1:]), true
	}
	return "", false
}

func TestOpticalReaderPublishesDecodedFrames(t *testing.T) {
	src := &fakeSource{stream: &fakeStream{frames: [][]byte{
		[]byte("noise"),
		[]byte("#X123"),
		[]byte("#Y900"),
	}}}
	var events []ScanEvent
	reader := NewOpticalReader(src, prefixDecoder{}, func(ev ScanEvent) {
		events = append(events, ev)
	}, slog.Default())

	err := reader.Run(context.Background())
	require.ErrorIs(t, err, io.EOF)
	require.Len(t, events, 2)
	assert.Equal(t, ScanEvent{Code: "X123", Source: SourceCamera}, events[0])
	assert.Equal(t, ScanEvent{Code: "Y900", Source: SourceCamera}, events[1])
}

func TestOpticalReaderFallsBackToFrontFacing(t *testing.T) {
	src := &fakeSource{
		errs:   map[CameraFacing]error{FacingRear: ErrNoDevice},
		stream: &fakeStream{},
	}
	reader := NewOpticalReader(src, prefixDecoder{}, func(ScanEvent) {}, slog.Default())

	err := reader.Run(context.Background())
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []CameraFacing{FacingRear, FacingFront}, src.opened)
}

func TestOpticalReaderBothFacingsMissing(t *testing.T) {
	src := &fakeSource{errs: map[CameraFacing]error{
		FacingRear:  ErrNoDevice,
		FacingFront: ErrNoDevice,
	}}
	reader := NewOpticalReader(src, prefixDecoder{}, func(ScanEvent) {}, slog.Default())

	err := reader.Run(context.Background())
	assert.ErrorIs(t, err, ErrCameraUnavailable)
}

func TestOpticalReaderNonDeviceErrorIsNotRetried(t *testing.T) {
	permission := errors.New("permission denied")
	src := &fakeSource{errs: map[CameraFacing]error{FacingRear: permission}}
	reader := NewOpticalReader(src, prefixDecoder{}, func(ScanEvent) {}, slog.Default())

	err := reader.Run(context.Background())
	assert.ErrorIs(t, err, permission)
	assert.Equal(t, []CameraFacing{FacingRear}, src.opened)
}
