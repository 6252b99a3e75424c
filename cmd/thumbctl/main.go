package main

import (
	"io"
	"os"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/ffmpeg"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/startup"
	"video-thumbnailer/internal/thumb"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	// Image data goes to stdout; keep it clean.
	logging.SetOutput(os.Stderr)

	if err := newRootCmd(ffmpeg.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(backend codec.Backend) *cobra.Command {
	var verbosity string

	root := &cobra.Command{
		Use:          "thumbctl",
		Short:        "Extract thumbnails from video files",
		Version:      startup.Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&verbosity, "verbosity", "quiet", "codec log verbosity: quiet, info or debug")

	root.AddCommand(
		newExtractCmd(backend, &verbosity),
		newProbeCmd(backend, &verbosity),
	)
	return root
}

// openThumber initializes backend at the requested verbosity.
func openThumber(backend codec.Backend, verbosity string) (thumb.Thumber, error) {
	v, err := codec.ParseVerbosity(verbosity)
	if err != nil {
		return nil, err
	}
	return thumb.Init(backend, v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
