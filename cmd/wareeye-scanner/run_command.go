package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"wareeye/internal/capture"
	"wareeye/internal/decode"
	"wareeye/internal/parse"
	"wareeye/internal/submit"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture frames, decode them, and submit scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg.Scanner
			info, err := readCameraInfo(cfg.CameraInfoPath)
			if err != nil {
				return fmt.Errorf("camera info: %w (run setup first)", err)
			}

			sourceURL := sourceFlag
			if sourceURL == "" {
				sourceURL = info.URL
			}
			source, err := capture.NewSource(sourceURL, cfg.RequestTimeout)
			if err != nil {
				return err
			}

			serverURL := cfg.ServerURL
			if serverURL == "" {
				serverURL = info.ServerURL()
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chain := decode.NewChain(decode.LoadCapabilities(runCtx, &cfg, ctx.logger), ctx.logger)
			client := submit.NewClient(serverURL, *info, cfg.Cooldown, cfg.RequestTimeout,
				submit.WithScope(submit.Scope(cfg.CooldownScope)),
				submit.WithLogger(ctx.logger),
			)

			queue := capture.NewFrameQueue(cfg.QueueSize)
			pool := capture.NewDecodePool(cfg.DecodeWorkers, queue, chain, client, logOutcome(ctx), ctx.logger)

			ctx.logger.Printf("camera %q in %q reading %s, reporting to %s", info.Name, info.Area, sourceURL, serverURL)
			capture.NewRunner(source, queue, pool, cfg.FrameInterval, ctx.logger).Run(runCtx)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "Frame source (snapshot URL, image directory or file); defaults to the camera URL")
	return cmd
}

func logOutcome(ctx *commandContext) func(capture.Outcome) {
	return func(o capture.Outcome) {
		for _, d := range o.Result.Detections {
			if d.Outcome == decode.Decoded {
				continue
			}
			ctx.logger.Printf("%s tier: %s code at %v", o.Result.Tier, d.Outcome, d.Polygon)
		}
	}
}

// readCameraInfo parses the camera info file while holding the shared lock, so
// it waits for a concurrent setup to finish writing.
func readCameraInfo(path string) (*parse.CameraInfo, error) {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock camera info: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse.ParseCameraInfo(f)
}
