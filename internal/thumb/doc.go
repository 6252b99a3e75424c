// Package thumb extracts a single representative thumbnail from a video.
//
// A [Session] owns one open input, its selected video stream and decoder,
// and the metadata discovered when it was created (duration, dimensions,
// codec name). [Session.LoadFrame] locates a decodable frame near a
// normalized position, converts it to a pixel format the still-image
// encoder accepts and encodes it as a BMP:
//
//	session, err := thumb.Create(backend, "/media/clip.mp4")
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	n, buf, err := session.LoadFrame(0.5)
//	if err != nil {
//	    return err
//	}
//	defer buf.Free()
//
// # Frame location
//
// The locator seeks to the keyframe nearest the target, issues a second
// backward seek when the target is past the start, flushes the decoder and
// scans forward. Each scan attempt reads packets of the selected stream
// until a frame at or after the target is decoded or the input is
// exhausted. At the first end of input the decoder is drained, so frames it
// still holds for reordering are considered too. Frames reporting zero
// width or height are discarded. After
// [MaxDecodeAttempts] attempts without a usable frame the call fails with
// [ErrNotFound]. A decode error fails the call immediately.
//
// # Lazy pipeline
//
// The pixel-format converter and the encoder are built on the first
// successful locate and reused for every later call on the same session.
// The pixel format is negotiated once from the decoder's native format and
// never re-negotiated.
//
// # Concurrency
//
// Everything runs synchronously on the caller's goroutine. A Session is not
// safe for concurrent use; distinct sessions share no state.
//
// # Capability table
//
// [Init] initializes a codec backend at a given verbosity and returns a
// [Thumber], the flat operation set exposed to host applications.
package thumb
