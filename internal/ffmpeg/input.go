package ffmpeg

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"

	"github.com/asticode/go-astiav"
)

type input struct {
	fc     *astiav.FormatContext
	closed bool
}

func (in *input) FindStreamInfo() error {
	return translate(in.fc.FindStreamInfo(nil))
}

// Duration is in the global time base (microseconds).
func (in *input) Duration() int64 {
	d := in.fc.Duration()
	if d == astiav.NoPtsValue {
		return 0
	}
	return d
}

// BestVideoStream picks the decodable video stream with the most pixels,
// the first one on ties.
func (in *input) BestVideoStream() (codec.StreamInfo, error) {
	var (
		best     *astiav.Stream
		bestDec  *astiav.Codec
		bestArea int
		sawVideo bool
	)
	for _, s := range in.fc.Streams() {
		params := s.CodecParameters()
		if params.MediaType() != astiav.MediaTypeVideo {
			continue
		}
		sawVideo = true

		dec := astiav.FindDecoder(params.CodecID())
		if dec == nil {
			continue
		}
		if area := params.Width() * params.Height(); best == nil || area > bestArea {
			best, bestDec, bestArea = s, dec, area
		}
	}

	switch {
	case best != nil:
		return codec.StreamInfo{
			Index:     best.Index(),
			TimeBase:  toRational(best.TimeBase()),
			CodecName: bestDec.Name(),
		}, nil
	case sawVideo:
		return codec.StreamInfo{}, codec.ErrDecoderNotFound
	default:
		return codec.StreamInfo{}, codec.ErrStreamNotFound
	}
}

func (in *input) stream(index int) (*astiav.Stream, error) {
	for _, s := range in.fc.Streams() {
		if s.Index() == index {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stream %d: %w", index, codec.ErrStreamNotFound)
}

func (in *input) OpenDecoder(info codec.StreamInfo, opts codec.DecoderOptions) (codec.Decoder, error) {
	stream, err := in.stream(info.Index)
	if err != nil {
		return nil, err
	}

	d := &decoder{params: stream.CodecParameters(), tolerant: opts.ErrorTolerant}
	if err := d.open(); err != nil {
		return nil, err
	}
	return d, nil
}

func (in *input) Seek(ts int64, backward bool) error {
	flags := astiav.NewSeekFlags()
	if backward {
		flags = astiav.NewSeekFlags(astiav.SeekFlagBackward)
	}
	return translate(in.fc.SeekFrame(-1, ts, flags))
}

func (in *input) ReadPacket() (codec.Packet, error) {
	p := astiav.AllocPacket()
	if err := in.fc.ReadFrame(p); err != nil {
		p.Free()
		return nil, translate(err)
	}
	return &packet{p: p}, nil
}

func (in *input) Close() error {
	if in.closed {
		return nil
	}
	in.closed = true
	in.fc.CloseInput()
	in.fc.Free()
	return nil
}

type packet struct {
	p *astiav.Packet
}

func (p *packet) StreamIndex() int { return p.p.StreamIndex() }
func (p *packet) Data() []byte     { return p.p.Data() }

func (p *packet) Release() {
	if p.p != nil {
		p.p.Free()
		p.p = nil
	}
}

// decoder owns a codec context opened from the stream's parameters. The
// bound library has no avcodec_flush_buffers, so Flush reopens the context.
type decoder struct {
	cc       *astiav.CodecContext
	params   *astiav.CodecParameters
	tolerant bool
	name     string

	// dirty is set once input was sent since the context was opened.
	dirty bool
}

func (d *decoder) open() error {
	dec := astiav.FindDecoder(d.params.CodecID())
	if dec == nil {
		return codec.ErrDecoderNotFound
	}

	cc := astiav.AllocCodecContext(dec)
	if cc == nil {
		return errors.New("failed to allocate codec context")
	}
	if err := d.params.ToCodecContext(cc); err != nil {
		cc.Free()
		return fmt.Errorf("copying codec parameters: %w", err)
	}

	var dict *astiav.Dictionary
	if d.tolerant {
		dict = astiav.NewDictionary()
		defer dict.Free()
		if err := dict.Set("bug", "autodetect", astiav.NewDictionaryFlags()); err != nil {
			cc.Free()
			return fmt.Errorf("setting decoder options: %w", err)
		}
	}

	if err := cc.Open(dec, dict); err != nil {
		cc.Free()
		return translate(err)
	}

	d.cc = cc
	d.name = dec.Name()
	d.dirty = false
	return nil
}

func (d *decoder) SendPacket(p codec.Packet) error {
	pk, ok := p.(*packet)
	if !ok {
		return fmt.Errorf("unexpected packet type %T", p)
	}
	d.dirty = true
	return translate(d.cc.SendPacket(pk.p))
}

func (d *decoder) ReceiveFrame() (codec.Frame, error) {
	f := astiav.AllocFrame()
	if err := d.cc.ReceiveFrame(f); err != nil {
		f.Free()
		return nil, translate(err)
	}

	// Same fallback as libav's best_effort_timestamp when pts is unset.
	best := f.Pts()
	if best == astiav.NoPtsValue {
		best = f.PktDts()
	}
	return &frame{f: f, best: best}, nil
}

// Drain sends the flush packet that puts the decoder in draining mode.
func (d *decoder) Drain() error {
	d.dirty = true
	return translate(d.cc.SendPacket(nil))
}

// Flush reopens the codec context from the stream parameters. Buffered
// frames are dropped with the old context. A context nothing was sent to
// is kept as is.
func (d *decoder) Flush() error {
	if !d.dirty && d.cc != nil {
		return nil
	}
	if d.cc != nil {
		d.cc.Free()
		d.cc = nil
	}
	if err := d.open(); err != nil {
		return fmt.Errorf("reopening decoder: %w", err)
	}
	return nil
}

func (d *decoder) Width() int                        { return d.params.Width() }
func (d *decoder) Height() int                       { return d.params.Height() }
func (d *decoder) PixelFormat() codec.PixelFormat    { return toPixelFormat(d.params.PixelFormat()) }
func (d *decoder) SampleAspectRatio() codec.Rational { return toRational(d.params.SampleAspectRatio()) }
func (d *decoder) CodecName() string                 { return d.name }

func (d *decoder) Close() error {
	if d.cc != nil {
		d.cc.Free()
		d.cc = nil
	}
	return nil
}

type frame struct {
	f    *astiav.Frame
	best int64
}

func (f *frame) Width() int                     { return f.f.Width() }
func (f *frame) Height() int                    { return f.f.Height() }
func (f *frame) PixelFormat() codec.PixelFormat { return toPixelFormat(f.f.PixelFormat()) }
func (f *frame) PTS() int64                     { return f.f.Pts() }
func (f *frame) SetPTS(pts int64)               { f.f.SetPts(pts) }
func (f *frame) BestEffortTimestamp() int64     { return f.best }

func (f *frame) Release() {
	if f.f != nil {
		f.f.Free()
		f.f = nil
	}
}
