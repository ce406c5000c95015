package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agrichain/internal/audio"
	"agrichain/internal/domain"
	"agrichain/internal/usecase"
)

func newInvokeCmd(a *app) *cobra.Command {
	var audioOut string
	cmd := &cobra.Command{
		Use:   "invoke <action> [json|-]",
		Short: "Run one action and print its JSON result",
		Example: `  agrichain invoke weather-forecast '{"location":"Madurai"}'
  echo '{"query":"நெல் விலை என்ன?"}' | agrichain invoke voice-assistance - --audio-out reply.wav`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}

			h, closeStore, err := buildHandler(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			status, out := h.Action(cmd.Context(), args[0], body)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("agrichain: encode result: %w", err)
			}
			if status != http.StatusOK {
				return fmt.Errorf("agrichain: %s failed with status %d", args[0], status)
			}

			if reply, ok := out.(usecase.VoiceReply); ok && audioOut != "" {
				return writeAudio(cmd.ErrOrStderr(), reply.AudioDataURI, audioOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "write the voice reply WAV to this file")
	return cmd
}

// readBody takes the JSON argument, or stdin when it is "-" or absent.
func readBody(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	buf, err := io.ReadAll(io.LimitReader(stdin, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("agrichain: read stdin: %w", err)
	}
	return buf, nil
}

func writeAudio(log io.Writer, dataURI, path string) error {
	m, err := domain.ParseDataURI(dataURI)
	if err != nil {
		return err
	}
	f, pcm, err := audio.DecodeWAV(m.Data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(strings.TrimSpace(path), m.Data, 0o644); err != nil {
		return fmt.Errorf("agrichain: write audio: %w", err)
	}
	frames := len(pcm) / f.BlockAlign()
	_, err = fmt.Fprintf(log, "wrote %s: %d Hz, %d ch, %d-bit, %.2fs\n",
		path, f.SampleRate, f.Channels, f.BitDepth, float64(frames)/float64(f.SampleRate))
	return err
}
