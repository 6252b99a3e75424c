package thumb

import (
	"errors"
	"fmt"
	"io"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/metrics"
)

// MaxDecodeAttempts bounds the number of scan attempts made by LoadFrame
// before it gives up with ErrNotFound.
const MaxDecodeAttempts = 200

// locate seeks near position and returns the first decodable frame whose
// timestamp is at or after the target. The returned frame has its
// presentation timestamp reset to zero and must be released by the caller.
func (s *Session) locate(position float64) (codec.Frame, error) {
	target := int64(float64(s.durationTS) * position)

	if err := s.input.Seek(target, false); err != nil {
		logging.Debug("Seek to %d failed for %s: %v", target, s.path, err)
	}
	if target > 0 {
		if err := s.input.Seek(target, true); err != nil {
			logging.Debug("Backward seek to %d failed for %s: %v", target, s.path, err)
		}
	}
	if err := s.decoder.Flush(); err != nil {
		logging.Error("Failed to flush decoder for %s: %v", s.path, err)
		return nil, newError(KindDecode, "load", s.path, err)
	}

	sc := &scanState{target: codec.Rescale(target, codec.GlobalTimeBase, s.stream.TimeBase)}
	logging.Debug("Seek to %d (stream ts %d) in %s", target, sc.target, s.path)

	for attempt := 1; attempt <= MaxDecodeAttempts; attempt++ {
		frame, err := s.scan(sc)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}
		if frame.Width() == 0 || frame.Height() == 0 {
			logging.Debug("Discarding %dx%d frame from %s (attempt %d)", frame.Width(), frame.Height(), s.path, attempt)
			frame.Release()
			continue
		}

		metrics.ThumbnailDecodeAttempts.Observe(float64(attempt))
		frame.SetPTS(0)
		return frame, nil
	}

	metrics.ThumbnailDecodeAttempts.Observe(MaxDecodeAttempts)
	logging.Debug("No frame at or after %d in %s after %d attempts", sc.target, s.path, MaxDecodeAttempts)
	return nil, newError(KindNotFound, "load", s.path,
		fmt.Errorf("no decodable frame at or after ts %d within %d attempts", sc.target, MaxDecodeAttempts))
}

// scanState tracks one locate call across scan attempts.
type scanState struct {
	target int64

	// drained is set once the decoder was told the input ended.
	drained bool
}

// scan feeds packets of the selected stream to the decoder until it yields
// a frame at or after the target. At the first end of input the decoder is
// drained so frames it still holds are considered. It returns a nil frame
// when the input is exhausted.
func (s *Session) scan(sc *scanState) (codec.Frame, error) {
	for {
		pkt, err := s.input.ReadPacket()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.Debug("Read stopped for %s: %v", s.path, err)
			}
			if !sc.drained {
				sc.drained = true
				if err := s.decoder.Drain(); err != nil {
					logging.Debug("Drain failed for %s: %v", s.path, err)
					return nil, nil
				}
			}
			// A drained decoder keeps reporting io.EOF once it is empty.
			return s.receive(sc.target)
		}

		if pkt.StreamIndex() != s.stream.Index {
			pkt.Release()
			continue
		}

		frame, err := s.decode(pkt, sc.target)
		pkt.Release()
		if err != nil || frame != nil {
			return frame, err
		}
	}
}

// decode sends pkt and collects the frames it completes. When the decoder
// refuses the packet until output is read, pending frames are received and
// the packet is sent once more.
func (s *Session) decode(pkt codec.Packet, target int64) (codec.Frame, error) {
	err := s.decoder.SendPacket(pkt)
	if errors.Is(err, codec.ErrAgain) {
		frame, rerr := s.receive(target)
		if rerr != nil || frame != nil {
			return frame, rerr
		}
		err = s.decoder.SendPacket(pkt)
	}
	if err != nil {
		logging.Error("Failed to decode %s: %v", s.path, err)
		return nil, newError(KindDecode, "load", s.path, err)
	}
	return s.receive(target)
}

// receive returns the first available frame at or after target, releasing
// earlier ones. It returns a nil frame once the decoder needs more input or
// has nothing left.
func (s *Session) receive(target int64) (codec.Frame, error) {
	for {
		frame, err := s.decoder.ReceiveFrame()
		if errors.Is(err, codec.ErrAgain) || errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			logging.Error("Failed to decode %s: %v", s.path, err)
			return nil, newError(KindDecode, "load", s.path, err)
		}

		ts := frame.BestEffortTimestamp()
		frame.SetPTS(ts)
		logging.Debug("Got frame @ %dx%d ts=%d target=%d", frame.Width(), frame.Height(), ts, target)
		if ts >= target {
			return frame, nil
		}
		frame.Release()
	}
}
