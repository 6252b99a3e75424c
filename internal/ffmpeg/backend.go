package ffmpeg

import (
	"errors"
	"fmt"
	"sync"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"

	"github.com/asticode/go-astiav"
)

var (
	initialized bool
	initMutex   sync.Mutex
)

// Backend is the FFmpeg implementation of codec.Backend. It holds no state;
// the zero value is ready to use.
type Backend struct{}

var _ codec.Backend = Backend{}

// New returns the FFmpeg backend.
func New() Backend { return Backend{} }

func (Backend) Name() string { return "ffmpeg" }

// Init installs the log callback once and applies v on every call.
func (Backend) Init(v codec.Verbosity) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if !initialized {
		astiav.SetLogCallback(forwardLog)
		initialized = true
		logging.Info("FFmpeg backend initialized")
	}

	astiav.SetLogLevel(logLevel(v))
	logging.Debug("FFmpeg log level set to %s", v)
	return nil
}

func (Backend) OpenInput(path string) (codec.Input, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("failed to allocate format context")
	}

	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("open %s: %w", path, translate(err))
	}

	return &input{fc: fc}, nil
}

// StillImageFormats returns the pixel formats of the BMP encoder.
func (Backend) StillImageFormats() []codec.PixelFormat {
	enc := astiav.FindEncoder(astiav.CodecIDBmp)
	if enc == nil {
		return nil
	}

	var formats []codec.PixelFormat
	for _, pf := range enc.PixelFormats() {
		formats = append(formats, toPixelFormat(pf))
	}
	return formats
}

func (Backend) BestPixelFormat(candidates []codec.PixelFormat, src codec.PixelFormat) (codec.PixelFormat, error) {
	return codec.ClosestPixelFormat(candidates, src)
}

func (Backend) NewConverter(cfg codec.ConverterConfig) (codec.Converter, error) {
	return newConverter(cfg)
}

func (Backend) NewEncoder(cfg codec.EncoderConfig) (codec.Encoder, error) {
	return newEncoder(cfg)
}
