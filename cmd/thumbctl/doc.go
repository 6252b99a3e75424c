// Command thumbctl extracts a single frame from a video file from the
// command line, using the same extraction core as the HTTP server.
//
// Usage:
//
//	thumbctl extract FILE [--position 0.5] [--output out.bmp] [--format bmp|png|jpeg]
//	                      [--width N] [--height N] [--quality Q]
//	thumbctl probe FILE [--json]
//
// Both commands accept --verbosity quiet|info|debug for the codec library's
// own log output, which is forwarded to stderr.
//
// extract writes to stdout unless --output is given. It refuses to write
// image data to an interactive terminal without --force. When --format is
// omitted the extension of --output selects it.
package main
