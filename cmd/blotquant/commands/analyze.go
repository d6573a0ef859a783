package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"blotquant/internal/export"
	"blotquant/internal/image"
	"blotquant/internal/protocol"
	"blotquant/internal/roi"
	"blotquant/internal/session"
)

func analyzeCmd() *cobra.Command {
	var (
		xlsxPath string
		tsvPath  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <protocol.bqproto>",
		Short: "Run a saved quantification protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			protoPath := args[0]
			proto, err := protocol.Load(protoPath)
			if err != nil {
				return fmt.Errorf("load protocol: %w", err)
			}

			imagePath := proto.GetImagePath(protoPath)
			if imagePath == "" {
				return fmt.Errorf("protocol has no image")
			}
			layer, err := image.Load(imagePath)
			if err != nil {
				return fmt.Errorf("load image: %w", err)
			}
			log.WithFields(logrus.Fields{
				"image": imagePath,
				"size":  fmt.Sprintf("%dx%d", layer.Width(), layer.Height()),
			}).Debug("image loaded")

			extractor, err := roi.NewExtractor(layer.Image, layer.DisplaySize())
			if err != nil {
				return fmt.Errorf("prepare extractor: %w", err)
			}
			defer extractor.Close()

			sess := session.New(layer.DisplaySize())
			sess.Configure(session.Settings{
				Replicates: proto.Replicates,
				EqualN:     proto.EqualN,
				StartLane:  proto.StartLane,
				RunWelch:   proto.Welch,
			})
			sess.SetImage(layer, extractor)
			if err := sess.SetRotation(proto.Rotation); err != nil {
				return fmt.Errorf("set rotation: %w", err)
			}

			for i, m := range proto.Measurements {
				kind, err := m.RecordKind()
				if err != nil {
					return fmt.Errorf("measurement %d: %w", i, err)
				}
				_, err = sess.Measure(session.Measurement{
					Kind:       kind,
					Group:      m.Group,
					Detail:     m.Detail,
					Name:       m.Name,
					Region:     m.Region,
					Separators: m.Separators,
				})
				if errors.Is(err, roi.ErrEmptyRegion) {
					log.WithField("measurement", i).Warn("region is empty, skipping")
					continue
				}
				if err != nil {
					return fmt.Errorf("measurement %d: %w", i, err)
				}
				log.WithFields(logrus.Fields{
					"kind": kind.String(),
					"name": m.Name,
				}).Debug("measured")
			}

			for group, lanes := range proto.Exclusions {
				for _, lane := range lanes {
					sess.ToggleExclusion(group, lane)
				}
			}

			report := export.Build(sess, proto.Experiment)

			if xlsxPath != "" {
				if err := writeWorkbookFile(xlsxPath, report); err != nil {
					return err
				}
				log.WithField("path", xlsxPath).Info("workbook written")
			}
			if tsvPath != "" {
				if err := writeTextFile(tsvPath, report); err != nil {
					return err
				}
				log.WithField("path", tsvPath).Info("table written")
			}
			if xlsxPath == "" && tsvPath == "" {
				return export.WriteText(cmd.OutOrStdout(), report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this path")
	cmd.Flags().StringVar(&tsvPath, "tsv", "", "write a tab-separated table to this path")
	return cmd
}

func writeWorkbookFile(path string, report *export.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteWorkbook(f, report)
}

func writeTextFile(path string, report *export.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteText(f, report)
}
