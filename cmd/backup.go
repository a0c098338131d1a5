package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagekeep/pagekeep/internal/compress"
	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/service"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "backup commands",
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	backupCmd.AddCommand(exportCmd())
	backupCmd.AddCommand(restoreCmd())
}

func backupService() (*service.BackupService, error) {
	cfg := config.LoadConfig()
	st := store.NewGormStore(config.GetDb(cfg))
	strategy, err := storage.ForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewBackupService(st, strategy), nil
}

// codecForPath picks a codec from the archive filename suffix.
func codecForPath(path string) compress.Codec {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return compress.NewGZip()
	case strings.HasSuffix(path, ".br"):
		return compress.NewBrotli()
	case strings.HasSuffix(path, ".lz4"):
		return compress.NewLZ4()
	}
	return compress.NewNop()
}

func exportCmd() *cobra.Command {
	var out string
	var metadataOnly bool

	command := &cobra.Command{
		Use:   "export",
		Short: "export the library to an archive file",
		Run: func(cmd *cobra.Command, args []string) {
			if out == "" {
				color.Red("missing: --out")
				return
			}

			backup, err := backupService()
			if err != nil {
				logrus.Error(err)
				return
			}

			ctx := context.Background()
			var snap *snapshot.Snapshot
			if metadataOnly {
				snap, err = backup.ExportMetadata(ctx)
			} else {
				snap, err = backup.ExportFull(ctx)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := json.Marshal(snap)
			if err != nil {
				logrus.Error(err)
				return
			}
			encoded, err := codecForPath(out).Encode(data)
			if err != nil {
				logrus.Error(err)
				return
			}
			if err := os.WriteFile(out, encoded, 0o644); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("exported %d documents to %s", len(snap.Metadata), out)
		},
	}

	command.Flags().StringVarP(&out, "out", "o", "", "archive file to write (required)")
	command.Flags().BoolVarP(&metadataOnly, "metadata-only", "m", false, "skip binary payloads")

	return command
}

func restoreCmd() *cobra.Command {
	var in string

	command := &cobra.Command{
		Use:   "restore",
		Short: "restore the library from an archive file",
		Run: func(cmd *cobra.Command, args []string) {
			if in == "" {
				color.Red("missing: --in")
				return
			}

			encoded, err := os.ReadFile(in)
			if err != nil {
				logrus.Error(err)
				return
			}
			data, err := codecForPath(in).Decode(encoded)
			if err != nil {
				logrus.Error(err)
				return
			}
			var snap snapshot.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				logrus.Error(err)
				return
			}

			backup, err := backupService()
			if err != nil {
				logrus.Error(err)
				return
			}
			result, err := backup.Restore(context.Background(), &snap)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("restored: %d documents inserted, %d skipped, %d shelves, %d subjects",
				result.DocumentsInserted, result.DocumentsSkipped, result.ShelvesInserted, result.SubjectsCreated)
		},
	}

	command.Flags().StringVarP(&in, "in", "i", "", "archive file to read (required)")

	return command
}
