package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/compress"
	"github.com/pagekeep/pagekeep/internal/service"
)

// AutoBackupTask periodically writes a full library snapshot to disk,
// compressed with the configured codec, and prunes old archives.
type AutoBackupTask struct {
	backup *service.BackupService
	codec  compress.Codec
	dir    string
	keep   int
	cron   string
}

func NewAutoBackupTask(schedule string, backup *service.BackupService, codec compress.Codec, dir string, keep int) *AutoBackupTask {
	return &AutoBackupTask{
		backup: backup,
		codec:  codec,
		dir:    dir,
		keep:   keep,
		cron:   schedule,
	}
}

func (a *AutoBackupTask) ID() string {
	return "auto_backup"
}

func (a *AutoBackupTask) Name() string {
	return "auto_backup"
}

func (a *AutoBackupTask) Schedule() string {
	return a.cron
}

func (a *AutoBackupTask) Run() {
	if err := a.writeArchive(context.Background()); err != nil {
		logrus.Errorf("auto backup failed: %v", err)
		return
	}
	if err := a.prune(); err != nil {
		logrus.Warnf("auto backup prune failed: %v", err)
	}
}

func (a *AutoBackupTask) writeArchive(ctx context.Context) error {
	snap, err := a.backup.ExportFull(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	encoded, err := a.codec.Encode(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	name := "library-backup-" + time.Now().UTC().Format("20060102-150405") + ".json" + a.codec.Ext()
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return err
	}
	logrus.Infof("auto backup written: %s (%d bytes)", path, len(encoded))
	return nil
}

// prune drops the oldest archives beyond the retention count. Archive names
// embed the timestamp, so lexical order is chronological order.
func (a *AutoBackupTask) prune() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return err
	}
	var archives []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "library-backup-") {
			archives = append(archives, entry.Name())
		}
	}
	if a.keep <= 0 || len(archives) <= a.keep {
		return nil
	}
	sort.Strings(archives)
	for _, name := range archives[:len(archives)-a.keep] {
		if err := os.Remove(filepath.Join(a.dir, name)); err != nil {
			return err
		}
		logrus.Debugf("auto backup pruned: %s", name)
	}
	return nil
}
