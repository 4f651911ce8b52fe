package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investdesk/core/internal/infrastructure/logger"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T, timeout time.Duration) *Store {
	t.Helper()
	return NewStore(NewLockManager(timeout), logger.Nop())
}

func TestStore_ReadWriteRoundTrip(t *testing.T) {
	s := newTestStore(t, time.Second)
	path := filepath.Join(t.TempDir(), "doc.json")

	want := testDoc{Name: "solar", Count: 3}
	require.NoError(t, WriteJSON(context.Background(), s, path, want))

	got, err := ReadJSON[testDoc](context.Background(), s, path)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestStore_ReadMissingFile(t *testing.T) {
	s := newTestStore(t, time.Second)
	path := filepath.Join(t.TempDir(), "absent.json")

	_, err := ReadJSON[testDoc](context.Background(), s, path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReadCorruptFile(t *testing.T) {
	s := newTestStore(t, time.Second)
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := ReadJSON[testDoc](context.Background(), s, path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound, "a corrupt file must not masquerade as a missing one")
}

func TestStore_WriteFormat(t *testing.T) {
	s := newTestStore(t, time.Second)
	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "wind", Count: 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"name\": \"wind\"", "output should use two-space indentation")
	assert.Equal(t, byte('\n'), data[len(data)-1], "output should end with a newline")
}

func TestStore_WriteCreatesRollbackCopy(t *testing.T) {
	s := newTestStore(t, time.Second)
	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "first"}))
	assert.NoFileExists(t, path+".bak", "first write has nothing to roll back to")

	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "second"}))
	require.FileExists(t, path+".bak")

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(bak), "first", "the .bak slot should hold the previous content")

	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "third"}))
	bak, err = os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(bak), "second", "each overwrite replaces the .bak slot")
}

func TestStore_LockTimeout(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)
	path := filepath.Join(t.TempDir(), "doc.json")

	require.True(t, s.Locks().Acquire(context.Background(), path))
	defer s.Locks().Release(path)

	err := WriteJSON(context.Background(), s, path, testDoc{})
	assert.ErrorIs(t, err, ErrLockTimeout)

	_, err = ReadJSON[testDoc](context.Background(), s, path)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

type recordingSnapshotter struct {
	calls []string
	err   error
}

func (r *recordingSnapshotter) BackupFile(ctx context.Context, filename string, force bool) error {
	r.calls = append(r.calls, filename)
	return r.err
}

func TestStore_SnapshotHookRunsBeforeWrite(t *testing.T) {
	s := newTestStore(t, time.Second)
	sn := &recordingSnapshotter{}
	s.AttachSnapshotter(sn)

	path := filepath.Join(t.TempDir(), "investments.json")
	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "fund"}))

	assert.Equal(t, []string{"investments.json"}, sn.calls)
}

func TestStore_SnapshotFailureDoesNotBlockWrite(t *testing.T) {
	s := newTestStore(t, time.Second)
	s.AttachSnapshotter(&recordingSnapshotter{err: assert.AnError})

	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, WriteJSON(context.Background(), s, path, testDoc{Name: "fund"}))
	assert.FileExists(t, path)
}
