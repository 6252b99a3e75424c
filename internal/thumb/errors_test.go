package thumb

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"video-thumbnailer/internal/metrics"
)

func TestErrorIs(t *testing.T) {
	err := newError(KindNotFound, "load", "/media/a.mp4", io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("errors.Is(err, ErrDecode) = true")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause not reachable through Unwrap")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error lost its kind")
	}
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf() = %v, want %v", got, KindNotFound)
	}
	if got := KindOf(io.EOF); got != KindUnknown {
		t.Errorf("KindOf(io.EOF) = %v, want %v", got, KindUnknown)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{
			err:  newError(KindContainerOpen, "create", "/media/a.mp4", io.EOF),
			want: "thumb: create /media/a.mp4: cannot open file: EOF",
		},
		{
			err:  newError(KindClosed, "load", "", nil),
			want: "thumb: load: session closed",
		},
		{
			err:  ErrEncode,
			want: "thumb: failed to encode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := []Kind{
		KindContainerOpen, KindProbe, KindNoVideoStream, KindDecoderOpen,
		KindNotFound, KindDecode, KindConversion, KindEncoderOpen,
		KindEncode, KindInvalidPosition, KindClosed,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		name := k.String()
		if name == "" || strings.HasPrefix(name, "kind(") {
			t.Errorf("Kind %d has no name", int(k))
		}
		if seen[name] {
			t.Errorf("duplicate kind name %q", name)
		}
		seen[name] = true
	}
	if got := Kind(99).String(); got != "kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}

func TestKindNamesAreMetricStatuses(t *testing.T) {
	statuses := make(map[string]bool)
	for _, s := range metrics.ExtractionStatuses {
		statuses[s] = true
	}
	for k := KindContainerOpen; k <= KindClosed; k++ {
		if !statuses[k.String()] {
			t.Errorf("kind %q missing from metrics.ExtractionStatuses", k)
		}
	}
}

func TestKindMessage(t *testing.T) {
	for k := KindContainerOpen; k <= KindClosed; k++ {
		msg := k.Message()
		if msg == "" || msg == "unknown error" {
			t.Errorf("kind %s has no message", k)
		}
		if strings.Contains(msg, "/") {
			t.Errorf("kind %s message %q looks like a path", k, msg)
		}
	}
	if got := KindUnknown.Message(); got != "unknown error" {
		t.Errorf("KindUnknown.Message() = %q", got)
	}
}
