package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
)

const (
	// DefaultBackupInterval is the minimum time between automatic snapshots
	// of the same source file. Writes inside the interval are skipped, which
	// bounds backup I/O regardless of write rate.
	DefaultBackupInterval = 12 * time.Hour

	// DefaultRetention is the number of timestamped snapshots kept per
	// source file.
	DefaultRetention = 5

	// ConfigFilename is the sidecar tracking last-backup times. It lives in
	// the data directory but is never snapshotted itself.
	ConfigFilename = "backup-config.json"
)

// Backup filenames embed an RFC3339 UTC timestamp with colons and dots
// replaced by dashes for filesystem safety. The format is fixed-width, so
// lexicographic order equals chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var timestampSanitizer = strings.NewReplacer(":", "-", ".", "-")

// BackupManager maintains dated snapshots of the data files, independent of
// the store's single-slot .bak sibling: the sibling is an immediate pre-write
// safety net, the timestamped directory is historical recovery.
type BackupManager struct {
	store     *Store
	dataDir   string
	backupDir string
	interval  time.Duration
	retention int
	logger    *logger.Logger
}

// NewBackupManager creates a backup manager. Non-positive interval and
// retention fall back to the defaults.
func NewBackupManager(store *Store, dataDir, backupDir string, interval time.Duration, retention int, log *logger.Logger) *BackupManager {
	if interval <= 0 {
		interval = DefaultBackupInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &BackupManager{
		store:     store,
		dataDir:   dataDir,
		backupDir: backupDir,
		interval:  interval,
		retention: retention,
		logger:    log.WithComponent("backup"),
	}
}

func (m *BackupManager) configPath() string {
	return filepath.Join(m.dataDir, ConfigFilename)
}

// readConfig loads the sidecar. Any failure yields an empty config so the
// subsystem fails open toward taking a backup.
func (m *BackupManager) readConfig(ctx context.Context) *entities.BackupConfig {
	cfg, err := ReadJSON[entities.BackupConfig](ctx, m.store, m.configPath())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warnw("Backup config unreadable, assuming no prior backups", "error", err)
		}
		cfg = &entities.BackupConfig{}
	}
	if cfg.LastBackups == nil {
		cfg.LastBackups = make(map[string]string)
	}
	return cfg
}

// recordBackupTime stamps "now" for filename in the sidecar. A failure here
// is a warning, not a backup failure: the physical snapshot already exists,
// and a backup with stale metadata beats no backup.
func (m *BackupManager) recordBackupTime(ctx context.Context, filename string) {
	cfg := m.readConfig(ctx)
	cfg.LastBackups[filename] = time.Now().UTC().Format(time.RFC3339)
	if err := WriteJSON(ctx, m.store, m.configPath(), cfg); err != nil {
		m.logger.Warnw("Failed to update backup config", "file", filename, "error", err)
	}
}

// IsBackupNeeded reports whether filename is due for a snapshot: no recorded
// backup, an unparsable recorded timestamp, or one older than the interval.
func (m *BackupManager) IsBackupNeeded(ctx context.Context, filename string) bool {
	cfg := m.readConfig(ctx)
	stamp, ok := cfg.LastBackups[filename]
	if !ok {
		return true
	}
	last, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		m.logger.Warnw("Unparsable backup timestamp, forcing backup", "file", filename, "stamp", stamp)
		return true
	}
	return time.Since(last) >= m.interval
}

// BackupFile snapshots one data file into the backup directory under a
// timestamped name. Unless force is set, files backed up within the interval
// are skipped; a skip is a success. The sidecar itself is never snapshotted.
func (m *BackupManager) BackupFile(ctx context.Context, filename string, force bool) error {
	if filename == ConfigFilename {
		return nil
	}

	src := filepath.Join(m.dataDir, filename)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			m.logger.Errorw("Cannot back up missing file", "file", filename)
			return ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !force && !m.IsBackupNeeded(ctx, filename) {
		return nil
	}

	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	stamp := timestampSanitizer.Replace(time.Now().UTC().Format(timestampLayout))
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	dst := filepath.Join(m.backupDir, base+"_"+stamp+ext)

	if err := copyFile(src, dst); err != nil {
		m.logger.Errorw("Backup copy failed", "file", filename, "error", err)
		return fmt.Errorf("backup %s: %w", filename, err)
	}
	m.logger.LogBackupEvent("created", filename, map[string]interface{}{"backup": filepath.Base(dst)})

	m.recordBackupTime(ctx, filename)

	if err := m.CleanupOldBackups(m.retention); err != nil {
		m.logger.Warnw("Backup retention cleanup failed", "error", err)
	}
	return nil
}

// BackupAll snapshots every JSON data file in the data directory except the
// sidecar. One failure does not abort the rest; the aggregate error reflects
// every file that failed.
func (m *BackupManager) BackupAll(ctx context.Context, force bool) error {
	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" || name == ConfigFilename {
			continue
		}
		if err := m.BackupFile(ctx, name, force); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CleanupOldBackups keeps the newest keep snapshots per original file and
// deletes the rest. Individual deletion failures are collected but do not
// stop processing.
func (m *BackupManager) CleanupOldBackups(keep int) error {
	if keep <= 0 {
		keep = m.retention
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read backup dir: %w", err)
	}

	groups := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if original := originalFilename(e.Name()); original != "" {
			groups[original] = append(groups[original], e.Name())
		}
	}

	var errs []error
	for original, names := range groups {
		// Fixed-width timestamps make lexicographic order chronological.
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
		for _, name := range names[min(keep, len(names)):] {
			if err := os.Remove(filepath.Join(m.backupDir, name)); err != nil {
				m.logger.Errorw("Failed to delete old backup", "backup", name, "error", err)
				errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
				continue
			}
			m.logger.Debugw("Deleted old backup", "original", original, "backup", name)
		}
	}
	return errors.Join(errs...)
}

// RestoreFromBackup copies a snapshot over the live data file, taking the
// target's lock so in-flight writers cannot interleave. An empty target is
// inferred by stripping the timestamp suffix from the backup name. The
// sidecar entry for the target is reset to "now" so the just-restored file
// is not immediately re-snapshotted.
func (m *BackupManager) RestoreFromBackup(ctx context.Context, backupName, target string) error {
	if target == "" {
		target = originalFilename(backupName)
		if target == "" {
			return fmt.Errorf("cannot infer target from backup name %q", backupName)
		}
	}

	src := filepath.Join(m.backupDir, backupName)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			m.logger.Errorw("Backup not found", "backup", backupName)
			return ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}

	dst := filepath.Join(m.dataDir, target)
	if !m.store.Locks().Acquire(ctx, dst) {
		m.logger.Warnw("Lock acquisition timed out", "op", "restore", "file", dst)
		return ErrLockTimeout
	}
	defer m.store.Locks().Release(dst)

	if err := copyFile(src, dst); err != nil {
		m.logger.Errorw("Restore copy failed", "backup", backupName, "target", target, "error", err)
		return fmt.Errorf("restore %s: %w", backupName, err)
	}
	m.logger.LogBackupEvent("restored", target, map[string]interface{}{"backup": backupName})

	m.recordBackupTime(ctx, target)
	return nil
}

// LastBackupTime returns the recorded last-backup time for filename.
func (m *BackupManager) LastBackupTime(ctx context.Context, filename string) (time.Time, bool) {
	cfg := m.readConfig(ctx)
	stamp, ok := cfg.LastBackups[filename]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ListBackups returns snapshot names, newest first. A non-empty original
// filename narrows the listing to that file's snapshots.
func (m *BackupManager) ListBackups(original string) ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if original != "" && originalFilename(e.Name()) != original {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// originalFilename recovers "investments.json" from
// "investments_2026-08-30T10-00-00-000Z.json". Returns "" for names that do
// not carry a timestamp suffix.
func originalFilename(backupName string) string {
	ext := filepath.Ext(backupName)
	stem := strings.TrimSuffix(backupName, ext)
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 {
		return ""
	}
	return stem[:idx] + ext
}
