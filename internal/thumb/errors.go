package thumb

import (
	"errors"
	"fmt"
)

// Kind classifies a thumbnail failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindContainerOpen means the input could not be opened or recognized.
	KindContainerOpen
	// KindProbe means stream metadata was missing or incomplete.
	KindProbe
	// KindNoVideoStream means no video stream with a decoder was found.
	KindNoVideoStream
	// KindDecoderOpen means the video decoder could not be opened.
	KindDecoderOpen
	// KindNotFound means no valid frame was found within the attempt bound.
	KindNotFound
	// KindDecode means the bit-stream could not be decoded.
	KindDecode
	// KindConversion means the pixel-format conversion stage failed.
	KindConversion
	// KindEncoderOpen means the still-image encoder could not be opened.
	KindEncoderOpen
	// KindEncode means encoding failed or produced no output.
	KindEncode
	// KindInvalidPosition means the requested position is outside [0, 1].
	KindInvalidPosition
	// KindClosed means the session was already closed.
	KindClosed
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindContainerOpen:   "container_open",
	KindProbe:           "probe",
	KindNoVideoStream:   "no_video_stream",
	KindDecoderOpen:     "decoder_open",
	KindNotFound:        "not_found",
	KindDecode:          "decode",
	KindConversion:      "conversion",
	KindEncoderOpen:     "encoder_open",
	KindEncode:          "encode",
	KindInvalidPosition: "invalid_position",
	KindClosed:          "closed",
}

// String returns a snake_case name suitable for metric labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var kindMessages = map[Kind]string{
	KindContainerOpen:   "cannot open file",
	KindProbe:           "cannot find stream info",
	KindNoVideoStream:   "cannot find video stream",
	KindDecoderOpen:     "cannot open decoder",
	KindNotFound:        "failed to get frame",
	KindDecode:          "failed to decode",
	KindConversion:      "failed to convert frame",
	KindEncoderOpen:     "failed to open encoder",
	KindEncode:          "failed to encode",
	KindInvalidPosition: "invalid position",
	KindClosed:          "session closed",
}

// Message returns a short description of k without path or cause, suitable
// for clients that must not see server paths.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "unknown error"
}

// Error is returned by every operation of this package.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrContainerOpen   = &Error{Kind: KindContainerOpen}
	ErrProbe           = &Error{Kind: KindProbe}
	ErrNoVideoStream   = &Error{Kind: KindNoVideoStream}
	ErrDecoderOpen     = &Error{Kind: KindDecoderOpen}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrDecode          = &Error{Kind: KindDecode}
	ErrConversion      = &Error{Kind: KindConversion}
	ErrEncoderOpen     = &Error{Kind: KindEncoderOpen}
	ErrEncode          = &Error{Kind: KindEncode}
	ErrInvalidPosition = &Error{Kind: KindInvalidPosition}
	ErrClosed          = &Error{Kind: KindClosed}
)

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg, ok := kindMessages[e.Kind]
	if !ok {
		msg = e.Kind.String()
	}

	prefix := "thumb"
	if e.Op != "" {
		prefix += ": " + e.Op
	}
	if e.Path != "" {
		prefix += " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
