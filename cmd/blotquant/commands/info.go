package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blotquant/internal/image"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Print blot image details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !image.IsSupportedFormat(path) {
				return fmt.Errorf("unsupported image format: %s (supported: %v)",
					path, image.SupportedFormats())
			}

			layer, err := image.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:       %s\n", layer.Path)
			fmt.Fprintf(out, "Dimensions: %d x %d px\n", layer.Width(), layer.Height())
			if layer.DPI > 0 {
				fmt.Fprintf(out, "Resolution: %.0f DPI\n", layer.DPI)
			} else {
				fmt.Fprintf(out, "Resolution: unknown\n")
			}
			display := layer.DisplaySize()
			fmt.Fprintf(out, "Display:    %.0f x %.0f px\n", display.Width, display.Height)
			return nil
		},
	}
	return cmd
}
