package codectest

import (
	"errors"
	"fmt"
	"io"

	"video-thumbnailer/internal/codec"
)

type packetDesc struct {
	stream int
	frame  int
}

type input struct {
	b       *Backend
	clip    Clip
	packets []packetDesc
	pos     int
	closed  bool
	probed  bool
}

func newInput(b *Backend, clip Clip) *input {
	in := &input{b: b, clip: clip}
	video := clip.videoIndex()
	for i := 0; i < clip.Frames; i++ {
		if clip.WithAudio {
			in.packets = append(in.packets, packetDesc{stream: 0, frame: i})
		}
		in.packets = append(in.packets, packetDesc{stream: video, frame: i})
	}
	return in
}

func (in *input) FindStreamInfo() error {
	if in.clip.Fail.Probe {
		return errors.New("could not find codec parameters")
	}
	in.probed = true
	return nil
}

func (in *input) Duration() int64 {
	if in.clip.ZeroDuration {
		return 0
	}
	return codec.Rescale(int64(in.clip.Frames), in.clip.timeBase(), codec.GlobalTimeBase)
}

func (in *input) BestVideoStream() (codec.StreamInfo, error) {
	switch {
	case in.clip.Fail.NoVideoStream:
		return codec.StreamInfo{}, codec.ErrStreamNotFound
	case in.clip.Fail.NoDecoder:
		return codec.StreamInfo{}, codec.ErrDecoderNotFound
	}
	return codec.StreamInfo{
		Index:     in.clip.videoIndex(),
		TimeBase:  in.clip.timeBase(),
		CodecName: in.clip.CodecName,
	}, nil
}

func (in *input) OpenDecoder(stream codec.StreamInfo, opts codec.DecoderOptions) (codec.Decoder, error) {
	if in.clip.Fail.DecoderOpen {
		return nil, errors.New("could not open codec")
	}
	if stream.Index != in.clip.videoIndex() {
		return nil, fmt.Errorf("stream %d is not a video stream", stream.Index)
	}
	in.b.update(func(s *Stats) {
		s.OpenDecoders++
		s.ErrorTolerant = opts.ErrorTolerant
	})
	return &decoder{b: in.b, clip: in.clip}, nil
}

func (in *input) Seek(ts int64, backward bool) error {
	in.b.update(func(s *Stats) { s.Seeks = append(s.Seeks, Seek{TS: ts, Backward: backward}) })

	idx := int(codec.Rescale(ts, codec.GlobalTimeBase, in.clip.timeBase()))
	var kf int
	if backward {
		kf = in.clip.keyframeAtOrBefore(idx)
	} else {
		kf = in.clip.keyframeAtOrAfter(idx)
	}

	in.pos = len(in.packets)
	for i, p := range in.packets {
		if p.frame >= kf {
			in.pos = i
			break
		}
	}
	return nil
}

func (in *input) ReadPacket() (codec.Packet, error) {
	if in.pos >= len(in.packets) {
		in.b.update(func(s *Stats) { s.EOFReads++ })
		return nil, io.EOF
	}
	d := in.packets[in.pos]
	in.pos++
	in.b.update(func(s *Stats) {
		s.PacketsRead++
		s.LivePackets++
	})
	return &packet{b: in.b, desc: d}, nil
}

func (in *input) Close() error {
	if in.closed {
		in.b.update(func(s *Stats) { s.DoubleCloses++ })
		return nil
	}
	in.closed = true
	in.b.update(func(s *Stats) { s.OpenInputs-- })
	return nil
}

type packet struct {
	b        *Backend
	desc     packetDesc
	data     []byte
	released bool
}

func (p *packet) StreamIndex() int { return p.desc.stream }
func (p *packet) Data() []byte     { return p.data }

func (p *packet) Release() {
	if p.released {
		p.b.update(func(s *Stats) { s.DoubleReleases++ })
		return
	}
	p.released = true
	p.b.update(func(s *Stats) { s.LivePackets-- })
}

type decoder struct {
	b        *Backend
	clip     Clip
	queue    []int
	busied   map[int]bool
	draining bool
	flushes  int
	closed   bool
}

func (d *decoder) SendPacket(p codec.Packet) error {
	pk, ok := p.(*packet)
	if !ok {
		return fmt.Errorf("unexpected packet type %T", p)
	}
	if d.draining {
		return fmt.Errorf("packet sent to drained decoder: %w", io.EOF)
	}
	if pk.desc.stream != d.clip.videoIndex() {
		return fmt.Errorf("packet of stream %d sent to video decoder", pk.desc.stream)
	}
	if d.clip.CorruptFrames[pk.desc.frame] {
		return fmt.Errorf("invalid data found when processing frame %d", pk.desc.frame)
	}
	if d.clip.BusyFrames[pk.desc.frame] && !d.busied[pk.desc.frame] {
		if d.busied == nil {
			d.busied = make(map[int]bool)
		}
		d.busied[pk.desc.frame] = true
		return codec.ErrAgain
	}
	d.queue = append(d.queue, pk.desc.frame)
	return nil
}

func (d *decoder) ReceiveFrame() (codec.Frame, error) {
	if d.draining && len(d.queue) == 0 {
		return nil, io.EOF
	}
	if !d.draining && len(d.queue) <= d.clip.DecoderDelay {
		return nil, codec.ErrAgain
	}
	idx := d.queue[0]
	d.queue = d.queue[1:]

	w, h := d.clip.Width, d.clip.Height
	if d.clip.ZeroSizeFrames[idx] {
		w, h = 0, 0
	}
	d.b.update(func(s *Stats) { s.LiveFrames++ })
	return &frame{
		b:      d.b,
		index:  idx,
		width:  w,
		height: h,
		format: d.clip.PixelFormat,
		pts:    int64(idx),
	}, nil
}

func (d *decoder) Drain() error {
	if d.draining {
		return fmt.Errorf("decoder already drained: %w", io.EOF)
	}
	d.draining = true
	d.b.update(func(s *Stats) { s.Drains++ })
	return nil
}

func (d *decoder) Flush() error {
	d.flushes++
	d.b.update(func(s *Stats) { s.Flushes++ })
	if d.clip.Fail.Flush && d.flushes > 1 {
		return errors.New("could not reopen codec")
	}
	d.queue = nil
	d.busied = nil
	d.draining = false
	return nil
}

func (d *decoder) Width() int                        { return d.clip.Width }
func (d *decoder) Height() int                       { return d.clip.Height }
func (d *decoder) PixelFormat() codec.PixelFormat    { return d.clip.PixelFormat }
func (d *decoder) SampleAspectRatio() codec.Rational { return codec.Rational{Num: 1, Den: 1} }
func (d *decoder) CodecName() string                 { return d.clip.CodecName }

func (d *decoder) Close() error {
	if d.closed {
		d.b.update(func(s *Stats) { s.DoubleCloses++ })
		return nil
	}
	d.closed = true
	d.queue = nil
	d.b.update(func(s *Stats) { s.OpenDecoders-- })
	return nil
}
