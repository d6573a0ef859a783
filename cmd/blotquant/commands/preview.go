package commands

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"blotquant/internal/image"
	"blotquant/internal/roi"
)

func previewCmd() *cobra.Command {
	var (
		angle  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "preview <image>",
		Short: "Render the display-space view of a blot image",
		Long: "Renders the image as the measurement regions see it: rotated " +
			"by the given angle with the canvas expanded, then scaled into " +
			"the display bounds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if angle < roi.MinAngle || angle > roi.MaxAngle {
				return fmt.Errorf("angle %d out of range %d..%d", angle, roi.MinAngle, roi.MaxAngle)
			}

			layer, err := image.Load(args[0])
			if err != nil {
				return err
			}

			preview, err := image.Preview(layer, angle, image.DefaultDisplaySize)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, preview); err != nil {
				return err
			}

			log.WithField("path", output).Info("preview written")
			return nil
		},
	}

	cmd.Flags().IntVarP(&angle, "angle", "a", 0, "rotation angle in degrees")
	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "output PNG path")
	return cmd
}
