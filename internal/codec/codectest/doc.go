// Package codectest provides a deterministic, pure-Go implementation of the
// codec capability interfaces for tests.
//
// A [Backend] serves synthetic clips registered under a path with
// [Backend.Add]. Each clip is a sequence of video packets (optionally
// interleaved with audio packets on another stream) whose frames decode to
// a gradient picture. Keyframe spacing, decoder latency, corrupt or
// zero-sized frames and failures of every capability can be configured per
// clip, and the backend counts every acquisition and release so tests can
// assert on resource discipline.
//
// Encoded output is a real BMP produced with golang.org/x/image/bmp.
package codectest
