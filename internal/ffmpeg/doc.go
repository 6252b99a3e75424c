// Package ffmpeg implements the codec capability interfaces on top of the
// FFmpeg libraries through github.com/asticode/go-astiav.
//
// Demuxing and decoding use libavformat and libavcodec. Pixel-format
// conversion runs a libavfilter graph of the form
//
//	buffer -> format=<pix_fmt> -> buffersink
//
// and thumbnails are encoded with the libavcodec BMP encoder.
//
// The bindings have no avcodec_flush_buffers, so a decoder flush reopens
// the codec context from the stream parameters.
//
// [Backend.Init] is process-wide: the first call installs a log callback
// that forwards library messages to the logging package, and every call
// re-applies the requested verbosity. It is safe to call more than once
// and from several goroutines.
package ffmpeg
