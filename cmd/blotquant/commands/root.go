// Package commands implements the blotquant CLI.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	log     = logrus.New()
)

func Execute() error {
	root := &cobra.Command{
		Use:   "blotquant",
		Short: "Western blot densitometry and analysis",
		Long: "blotquant measures band intensities on western blot images, " +
			"normalizes targets against loading controls and reports group " +
			"statistics.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(analyzeCmd(), infoCmd(), previewCmd(), versionCmd())
	return root.Execute()
}
