package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/thumb"

	"github.com/spf13/cobra"
)

// probeResult is the metadata printed by the probe command.
type probeResult struct {
	Path     string  `json:"path"`
	Codec    string  `json:"codec"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

func newProbeCmd(backend codec.Backend, verbosity *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe FILE",
		Short: "Print the codec, duration and frame size of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openThumber(backend, *verbosity)
			if err != nil {
				return err
			}
			result, err := probe(t, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printProbe(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func probe(t thumb.Thumber, path string) (probeResult, error) {
	session, err := t.Create(path)
	if err != nil {
		return probeResult{}, err
	}
	defer t.Destroy(session)

	return probeResult{
		Path:     path,
		Codec:    t.CodecName(session),
		Duration: t.Duration(session),
		Width:    t.Width(session),
		Height:   t.Height(session),
	}, nil
}

func printProbe(cmd *cobra.Command, r probeResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", r.Path)
	fmt.Fprintf(w, "Codec:\t%s\n", r.Codec)
	fmt.Fprintf(w, "Duration:\t%.3fs\n", r.Duration)
	fmt.Fprintf(w, "Size:\t%dx%d\n", r.Width, r.Height)
	return w.Flush()
}
