package store

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore 在任意后端之外加一层 LRU 读缓存，同一 id 的写入串行执行
type CachedStore struct {
	backend Store
	cache   *lru.Cache[string, *Snapshot]

	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func NewCachedStore(backend Store, size int) (*CachedStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("cached store requires a backend")
	}
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, *Snapshot](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{
		backend: backend,
		cache:   cache,
		locks:   make(map[string]*idLock),
	}, nil
}

func (s *CachedStore) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &idLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *CachedStore) Save(ctx context.Context, snap *Snapshot) error {
	unlock := s.lock(snap.ID)
	defer unlock()

	s.cache.Remove(snap.ID)
	if err := s.backend.Save(ctx, snap); err != nil {
		return err
	}
	s.cache.Add(snap.ID, snap)
	return nil
}

func (s *CachedStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	if snap, ok := s.cache.Get(id); ok {
		return snap, nil
	}

	unlock := s.lock(id)
	defer unlock()

	// 等锁期间可能已被其他调用填充
	if snap, ok := s.cache.Get(id); ok {
		return snap, nil
	}
	snap, err := s.backend.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, snap)
	return snap, nil
}

// List 直接访问后端
func (s *CachedStore) List(ctx context.Context) ([]Summary, error) {
	return s.backend.List(ctx)
}

func (s *CachedStore) Close() error {
	s.cache.Purge()
	return s.backend.Close()
}
