package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harborline/cargosim/internal/database"
	"github.com/harborline/cargosim/internal/events"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, SizeBytes: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return errors.New("delete refused")
	}
	delete(m.objects, key)
	return nil
}

func setupDatabases(t *testing.T) []*database.DB {
	t.Helper()
	var dbs []*database.DB
	for _, name := range []string{"game", "ledger", "cache"} {
		db, cleanup := testutil.NewTestDB(t, name)
		t.Cleanup(cleanup)
		dbs = append(dbs, db)
	}
	testutil.SeedDeck(t, dbs[0].Conn(), "backed up")
	return dbs
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[header.Name] = content
	}
	return files
}

func TestCreateAndUpload(t *testing.T) {
	store := newMemoryStore()
	emitter := testutil.NewRecordingEmitter()
	service := NewBackupService(store, setupDatabases(t), t.TempDir(), "cargosim/", emitter, zerolog.Nop())

	key, err := service.CreateAndUpload(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "cargosim/backup-"))
	assert.True(t, strings.HasSuffix(key, ".tar.gz"))

	files := readArchive(t, store.objects[key])
	assert.Contains(t, files, "game.db")
	assert.Contains(t, files, "ledger.db")
	assert.Contains(t, files, "cache.db")
	require.Contains(t, files, metadataFile)

	var metadata BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataFile], &metadata))
	require.Len(t, metadata.Databases, 3)
	for _, db := range metadata.Databases {
		assert.True(t, strings.HasPrefix(db.Checksum, "sha256:"))
		assert.Equal(t, int64(len(files[db.Filename])), db.SizeBytes)
	}

	completed := emitter.OfType(events.BackupCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, key, completed[0].(*events.BackupCompletedData).Key)
}

func TestListAndRotate(t *testing.T) {
	store := newMemoryStore()
	service := NewBackupService(store, nil, t.TempDir(), "p/", nil, zerolog.Nop())
	ctx := context.Background()

	now := time.Now().UTC()
	ages := []int{0, 1, 2, 40, 50, 60}
	for _, days := range ages {
		key := "p/backup-" + now.AddDate(0, 0, -days).Format(backupTimeLayout) + ".tar.gz"
		store.objects[key] = []byte("x")
	}
	store.objects["p/backup-garbage.tar.gz"] = []byte("x")

	backups, err := service.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, len(ages))
	assert.True(t, backups[0].Timestamp.After(backups[1].Timestamp))

	store.failOn = backups[5].Key
	deleted, err := service.RotateOldBackups(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := service.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 4)
}

func TestRotate_KeepsMinimum(t *testing.T) {
	store := newMemoryStore()
	service := NewBackupService(store, nil, t.TempDir(), "", nil, zerolog.Nop())
	old := time.Now().UTC().AddDate(-1, 0, 0)
	for i := 0; i < minBackupsToKeep; i++ {
		store.objects["backup-"+old.Add(time.Duration(i)*time.Hour).Format(backupTimeLayout)+".tar.gz"] = nil
	}

	deleted, err := service.RotateOldBackups(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = service.RotateOldBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
