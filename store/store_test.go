package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() output.Document {
	return output.Document{
		"app.A": {Name: "app.A"},
		"app.B": {Name: "app.B"},
	}
}

func TestFileStore_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)

	older := store.NewSnapshot("repo-a", "java", sampleDocument())
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := store.NewSnapshot("repo-b", "go", output.Document{})
	require.NoError(t, fs.Save(ctx, older))
	require.NoError(t, fs.Save(ctx, newer))

	loaded, err := fs.Load(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "repo-a", loaded.Repository)
	assert.True(t, older.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, []string{"app.A", "app.B"}, loaded.Document.Names())

	list, err := fs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 2, list[1].Classes)
}

func TestFileStore_NotFound(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Load(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// 非法 id 不会被拼进路径
	_, err = fs.Load(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, fs.Save(ctx, &store.Snapshot{ID: "nope"}), store.ErrNotFound)
}

// countingStore 记录后端访问次数
type countingStore struct {
	store.Store
	loads atomic.Int32
}

func (c *countingStore) Load(ctx context.Context, id string) (*store.Snapshot, error) {
	c.loads.Add(1)
	return c.Store.Load(ctx, id)
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	backend := &countingStore{Store: fs}

	cached, err := store.NewCachedStore(backend, 2)
	require.NoError(t, err)

	snap := store.NewSnapshot("repo", "java", sampleDocument())
	require.NoError(t, cached.Save(ctx, snap))

	// 保存后直接命中缓存
	got, err := cached.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, int32(0), backend.loads.Load())

	other := store.NewSnapshot("repo", "java", output.Document{})
	require.NoError(t, fs.Save(ctx, other))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := cached.Load(ctx, other.ID)
			assert.NoError(t, err)
			assert.Equal(t, other.ID, s.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), backend.loads.Load())

	_, err = cached.Load(ctx, "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, cached.Close())
}

func TestOpen(t *testing.T) {
	s, err := store.Open(store.Config{Backend: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)

	s, err = store.Open(store.Config{Path: t.TempDir(), CacheSize: 4})
	require.NoError(t, err)
	assert.IsType(t, &store.CachedStore{}, s)

	_, err = store.Open(store.Config{Backend: "redis"})
	assert.Error(t, err)

	_, err = store.Open(store.Config{Backend: store.BackendPostgres})
	assert.Error(t, err)

	_, err = store.Open(store.Config{Backend: store.BackendS3, S3: store.S3Config{Endpoint: "localhost:9000"}})
	assert.Error(t, err)
}
