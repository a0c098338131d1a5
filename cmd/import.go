package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/migrate"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

func init() {
	rootCmd.AddCommand(importCmd())
}

// importCmd moves a local-mirror export into the library, over HTTP when a
// server URL is given, directly into the database otherwise.
func importCmd() *cobra.Command {
	var in string
	var serverURL string

	command := &cobra.Command{
		Use:   "import",
		Short: "import a local-mirror export archive",
		Run: func(cmd *cobra.Command, args []string) {
			if in == "" {
				color.Red("missing: --in")
				return
			}

			bridge := migrate.NewBridge()
			snap, err := bridge.Load(in)
			if err != nil {
				logrus.Error(err)
				return
			}

			ctx := context.Background()
			if serverURL != "" {
				result, err := bridge.Push(ctx, serverURL, snap)
				if err != nil {
					logrus.Error(err)
					return
				}
				color.Green("imported via %s: %d inserted, %d skipped", serverURL, result.DocumentsInserted, result.DocumentsSkipped)
				return
			}

			cfg := config.LoadConfig()
			st := store.NewGormStore(config.GetDb(cfg))
			strategy, err := storage.ForConfig(cfg)
			if err != nil {
				logrus.Error(err)
				return
			}
			result, err := bridge.RestoreDirect(ctx, st, strategy, snap)
			if err != nil {
				logrus.Error(err)
				return
			}
			color.Green("imported: %d inserted, %d skipped", result.DocumentsInserted, result.DocumentsSkipped)
		},
	}

	command.Flags().StringVarP(&in, "in", "i", "", "export archive to read (required)")
	command.Flags().StringVarP(&serverURL, "url", "u", "", "server base URL, e.g. http://localhost:3030")

	return command
}
