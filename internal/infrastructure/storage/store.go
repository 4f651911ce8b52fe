package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/investdesk/core/internal/infrastructure/logger"
)

// Expected failure values. Callers branch on these with errors.Is instead of
// treating them as faults.
var (
	// ErrNotFound is returned when the target file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrLockTimeout is returned when the file lock could not be acquired
	// within the lock manager's timeout.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// Snapshotter takes a timestamped snapshot of a data file. The store invokes
// it before overwriting a file; failures are logged, never fatal to the write.
type Snapshotter interface {
	BackupFile(ctx context.Context, filename string, force bool) error
}

// Store provides locked read/write primitives over JSON files. All access to
// a given path goes through the lock manager, so in-process readers and
// writers are fully serialized per file.
type Store struct {
	locks     *LockManager
	logger    *logger.Logger
	snapshots Snapshotter
}

// NewStore creates a store backed by the given lock manager.
func NewStore(locks *LockManager, log *logger.Logger) *Store {
	return &Store{
		locks:  locks,
		logger: log.WithComponent("store"),
	}
}

// AttachSnapshotter wires the backup subsystem into the write path. Set once
// during startup, before the store is shared across goroutines.
func (s *Store) AttachSnapshotter(sn Snapshotter) {
	s.snapshots = sn
}

// Locks exposes the underlying lock manager for introspection.
func (s *Store) Locks() *LockManager {
	return s.locks
}

// ReadJSON reads and decodes the JSON document at path. An absent file is an
// expected condition reported as ErrNotFound; a file that exists but does not
// decode into T fails loudly rather than returning partial data.
func ReadJSON[T any](ctx context.Context, s *Store, path string) (*T, error) {
	start := time.Now()
	if !s.locks.Acquire(ctx, path) {
		s.logger.Warnw("Lock acquisition timed out", "op", "read", "file", path)
		return nil, ErrLockTimeout
	}
	defer s.locks.Release(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Errorw("Data file missing", "op", "read", "file", path)
			return nil, ErrNotFound
		}
		s.logger.Errorw("Read failed", "op", "read", "file", path, "error", err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Errorw("Parse failed", "op", "read", "file", path, "error", err)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.logger.LogStoreOperation("read", path, float64(time.Since(start).Microseconds())/1000, nil)
	return &v, nil
}

// WriteJSON serializes v with stable two-space indentation and writes it over
// path as a single full-file write. Before overwriting an existing file the
// previous content is copied to a sibling <path>.bak, a single-slot
// last-write rollback point kept separate from the timestamped backups.
func WriteJSON[T any](ctx context.Context, s *Store, path string, v T) error {
	start := time.Now()
	if !s.locks.Acquire(ctx, path) {
		s.logger.Warnw("Lock acquisition timed out", "op", "write", "file", path)
		return ErrLockTimeout
	}
	defer s.locks.Release(path)

	if s.snapshots != nil {
		if err := s.snapshots.BackupFile(ctx, filepath.Base(path), false); err != nil {
			s.logger.Warnw("Pre-write snapshot failed", "file", path, "error", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+".bak"); err != nil {
			s.logger.Warnw("Rollback copy failed", "file", path, "error", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Errorw("Marshal failed", "op", "write", "file", path, "error", err)
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Errorw("Write failed", "op", "write", "file", path, "error", err)
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.LogStoreOperation("write", path, float64(time.Since(start).Microseconds())/1000, nil)
	return nil
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
