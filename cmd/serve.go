package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagekeep/pagekeep/internal/cache"
	"github.com/pagekeep/pagekeep/internal/compress"
	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/jobs"
	"github.com/pagekeep/pagekeep/internal/server"
	"github.com/pagekeep/pagekeep/internal/service"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

func init() {
	rootCmd.AddCommand(serveCmd())
}

func serveCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "serve",
		Short: "run the library server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()

			db := config.GetDb(cfg)
			st := store.NewGormStore(db)
			if err := st.Migrate(); err != nil {
				logrus.Fatalf("migrate: %v", err)
			}

			strategy, err := storage.ForConfig(cfg)
			if err != nil {
				logrus.Fatalf("storage: %v", err)
			}
			logrus.Infof("file storage strategy: %s", strategy.Name())

			projections := cache.ForAddr(cfg.RedisAddr)

			documents := service.NewDocumentService(st, strategy, projections)
			shelves := service.NewShelfService(st, projections)
			backup := service.NewBackupService(st, strategy)

			var executor *jobs.TaskExecutor
			if cfg.AutoBackupEnabled {
				task := jobs.NewAutoBackupTask(
					cfg.AutoBackupSchedule,
					backup,
					compress.ForName(cfg.AutoBackupCodec),
					cfg.AutoBackupDir,
					cfg.AutoBackupKeep,
				)
				executor = jobs.NewTaskExecutor([]jobs.CronJob{task})
				executor.Run()
			}

			srv := server.NewServer(cfg, documents, shelves, backup)

			done := make(chan os.Signal, 1)
			signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				if err := srv.Start(); err != nil {
					logrus.Fatalf("server: %v", err)
				}
			}()

			<-done
			logrus.Info("shutting down")
			if executor != nil {
				executor.Stop()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logrus.Errorf("shutdown: %v", err)
			}
		},
	}

	return command
}
