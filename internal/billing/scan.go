package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode"
)

// ScanSource identifies which input path produced a scan event.
type ScanSource string

const (
	SourceKeyboard ScanSource = "keyboard"
	SourceCamera   ScanSource = "camera"
	SourceManual   ScanSource = "manual"
)

// ScanEvent is the single logical event all three input paths funnel into:
// "code C was scanned".
type ScanEvent struct {
	Code   string     `json:"code"`
	Source ScanSource `json:"source"`
}

// burstGapDefault is the largest inter-key gap still treated as scanner
// output. Hardware scanners emulate a keyboard but type far faster than a
// human; a longer pause means a person is typing and the buffer resets.
const burstGapDefault = 100 * time.Millisecond

// BurstAccumulator turns a stream of key presses into scan codes. Printable
// keys accumulate; a gap above the threshold discards the buffer; Enter with
// a non-empty buffer emits the code. It is driven by the owning session and
// is not safe for concurrent use.
type BurstAccumulator struct {
	gap  time.Duration
	buf  []rune
	last time.Time
}

// NewBurstAccumulator creates an accumulator. A non-positive gap selects the
// 100ms default.
func NewBurstAccumulator(gap time.Duration) *BurstAccumulator {
	if gap <= 0 {
		gap = burstGapDefault
	}
	return &BurstAccumulator{gap: gap}
}

// Press feeds one key press stamped at the given time. It returns the
// completed code when the press was Enter on a non-empty buffer.
func (b *BurstAccumulator) Press(key rune, at time.Time) (string, bool) {
	if !b.last.IsZero() && at.Sub(b.last) > b.gap {
		b.buf = b.buf[:0]
	}
	b.last = at

	if key == '\n' || key == '\r' {
		if len(b.buf) == 0 {
			return "", false
		}
		code := string(b.buf)
		b.buf = b.buf[:0]
		return code, true
	}
	if unicode.IsPrint(key) && !unicode.IsSpace(key) {
		b.buf = append(b.buf, key)
	}
	return "", false
}

// CameraFacing selects which camera device the optical reader opens.
type CameraFacing string

const (
	FacingRear  CameraFacing = "rear"
	FacingFront CameraFacing = "front"
)

// ErrNoDevice is returned by a FrameSource when the requested camera facing
// does not exist. It is the one error class that triggers the automatic
// front-facing retry.
var ErrNoDevice = errors.New("camera device not found")

// FrameSource opens a camera device and yields its frame stream.
type FrameSource interface {
	Open(ctx context.Context, facing CameraFacing) (FrameStream, error)
}

// FrameStream yields raw frames until closed or exhausted.
type FrameStream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Decoder extracts a barcode from a single frame.
type Decoder interface {
	Decode(frame []byte) (code string, ok bool)
}

// OpticalReader pumps frames from a camera through a decoder and publishes a
// scan event for every successful decode. When the rear camera cannot be
// opened it retries the front-facing one once; a second failure is terminal
// for the reader, manual entry stays available.
type OpticalReader struct {
	source  FrameSource
	decoder Decoder
	publish func(ScanEvent)
	logger  *slog.Logger
}

// NewOpticalReader constructs a reader publishing into the given sink.
func NewOpticalReader(source FrameSource, decoder Decoder, publish func(ScanEvent), logger *slog.Logger) *OpticalReader {
	return &OpticalReader{source: source, decoder: decoder, publish: publish, logger: logger}
}

// Run opens the camera and decodes frames until the context is cancelled or
// the stream ends. The returned error is ErrCameraUnavailable when neither
// facing could be opened.
func (o *OpticalReader) Run(ctx context.Context) error {
	stream, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			o.logger.Warn("close camera stream", slog.Any("error", err))
		}
	}()

	for {
		frame, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if code, ok := o.decoder.Decode(frame); ok {
			o.publish(ScanEvent{Code: code, Source: SourceCamera})
		}
	}
}

func (o *OpticalReader) open(ctx context.Context) (FrameStream, error) {
	stream, err := o.source.Open(ctx, FacingRear)
	if err == nil {
		return stream, nil
	}
	if !errors.Is(err, ErrNoDevice) {
		return nil, err
	}
	o.logger.Info("rear camera not found, trying front-facing")
	stream, err = o.source.Open(ctx, FacingFront)
	if err != nil {
		return nil, ErrCameraUnavailable
	}
	return stream, nil
}
