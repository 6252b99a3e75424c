package ffmpeg

import (
	"strings"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"

	"github.com/asticode/go-astiav"
)

// logLevel maps a verbosity to the library log level: quiet shows only
// fatal messages.
func logLevel(v codec.Verbosity) astiav.LogLevel {
	switch v {
	case codec.VerbosityInfo:
		return astiav.LogLevelInfo
	case codec.VerbosityDebug:
		return astiav.LogLevelDebug
	default:
		return astiav.LogLevelFatal
	}
}

func forwardLog(_ astiav.Classer, level astiav.LogLevel, _, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}

	switch {
	case level <= astiav.LogLevelError:
		logging.Error("[ffmpeg] %s", msg)
	case level <= astiav.LogLevelWarning:
		logging.Warn("[ffmpeg] %s", msg)
	case level <= astiav.LogLevelInfo:
		logging.Info("[ffmpeg] %s", msg)
	default:
		logging.Debug("[ffmpeg] %s", msg)
	}
}
