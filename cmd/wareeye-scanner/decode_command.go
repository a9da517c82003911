package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/spf13/cobra"

	"wareeye/internal/capture"
	"wareeye/internal/decode"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>...",
		Short: "Run the decoder chain on image files and print what it finds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg.Scanner
			chain := decode.NewChain(decode.LoadCapabilities(cmd.Context(), &cfg, ctx.logger), ctx.logger)

			var rows [][]string
			for _, path := range args {
				img, err := capture.LoadImage(path)
				if err != nil {
					rows = append(rows, []string{path, "error", "", err.Error(), ""})
					continue
				}
				rows = append(rows, resultRows(path, chain.Decode(cmd.Context(), img))...)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Tier", "Outcome", "Text", "Polygon"}, rows))
			return nil
		},
	}
}

func resultRows(path string, res decode.Result) [][]string {
	if len(res.Detections) == 0 {
		return [][]string{{path, res.Tier.String(), "", "", ""}}
	}
	rows := make([][]string, 0, len(res.Detections))
	for _, d := range res.Detections {
		rows = append(rows, []string{path, res.Tier.String(), d.Outcome.String(), d.Text, formatPolygon(d.Polygon)})
	}
	return rows
}

func formatPolygon(pts []image.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%d,%d", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
