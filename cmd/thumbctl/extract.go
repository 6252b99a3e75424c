package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/preview"
	"video-thumbnailer/internal/startup"
	"video-thumbnailer/internal/thumb"

	"github.com/spf13/cobra"
)

var errTerminalOutput = errors.New("refusing to write image data to a terminal; use --output or redirect stdout")

type extractOptions struct {
	position float64
	output   string
	format   string
	width    int
	height   int
	quality  int
	force    bool
}

func newExtractCmd(backend codec.Backend, verbosity *string) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Write the frame at a position of FILE as an image",
		Long: `Decodes the first frame at or after the given fraction of the video's
duration and writes it as BMP, or as PNG/JPEG when --format or the
--output extension asks for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = formatFromOutput(opts.output)
			}
			t, err := openThumber(backend, *verbosity)
			if err != nil {
				return err
			}
			return runExtract(cmd, t, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64VarP(&opts.position, "position", "p", startup.DefaultPosition, "seek position as a fraction of the duration, in [0, 1]")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	flags.StringVarP(&opts.format, "format", "f", "bmp", "output format: bmp, png or jpeg")
	flags.IntVar(&opts.width, "width", 0, "maximum output width (0 keeps the aspect ratio)")
	flags.IntVar(&opts.height, "height", 0, "maximum output height (0 keeps the aspect ratio)")
	flags.IntVar(&opts.quality, "quality", preview.DefaultJPEGQuality, "JPEG quality 1-100")
	flags.BoolVar(&opts.force, "force", false, "write image data even if stdout is a terminal")

	return cmd
}

func runExtract(cmd *cobra.Command, t thumb.Thumber, path string, opts extractOptions) error {
	format, err := preview.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	toStdout := opts.output == "" || opts.output == "-"
	if toStdout && !opts.force && isTerminal(cmd.OutOrStdout()) {
		return errTerminalOutput
	}

	session, err := t.Create(path)
	if err != nil {
		return err
	}
	defer t.Destroy(session)

	_, buf, err := t.LoadFrame(session, opts.position)
	if err != nil {
		return err
	}
	defer t.FreeFrameBuffer(buf)

	data, err := preview.Render(buf.Bytes(), preview.Options{
		Format:  format,
		Width:   opts.width,
		Height:  opts.height,
		Quality: opts.quality,
	})
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}

	if toStdout {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
	} else if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.output, err)
	}

	logging.Debug("%s: %s %dx%d, %.3fs, frame at %.3f written as %d byte %s",
		path, t.CodecName(session), t.Width(session), t.Height(session),
		t.Duration(session), opts.position, len(data), format)
	return nil
}

// formatFromOutput picks the format implied by the output file extension.
func formatFromOutput(output string) string {
	switch filepath.Ext(output) {
	case ".png", ".PNG":
		return string(preview.FormatPNG)
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return string(preview.FormatJPEG)
	default:
		return string(preview.FormatBMP)
	}
}
