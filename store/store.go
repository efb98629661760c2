// Package store 持久化分析快照。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/google/uuid"
)

// ErrNotFound 快照不存在
var ErrNotFound = errors.New("snapshot not found")

// Snapshot 一次分析的完整结果
type Snapshot struct {
	ID         string          `json:"id"`
	Repository string          `json:"repository"`
	Language   string          `json:"language"`
	CreatedAt  time.Time       `json:"createdAt"`
	Document   output.Document `json:"document"`
}

// Summary 快照列表项，不含文档
type Summary struct {
	ID         string    `json:"id"`
	Repository string    `json:"repository"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"createdAt"`
	Classes    int       `json:"classes"`
}

func NewSnapshot(repository, language string, doc output.Document) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		Repository: repository,
		Language:   language,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Document:   doc,
	}
}

func (s *Snapshot) Summary() Summary {
	return Summary{
		ID:         s.ID,
		Repository: s.Repository,
		Language:   s.Language,
		CreatedAt:  s.CreatedAt,
		Classes:    len(s.Document),
	}
}

// Store 快照存储。List 按创建时间倒序。
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

type Config struct {
	Backend   string
	Path      string // file 后端的目录
	DSN       string // postgres 连接串
	CacheSize int    // 读缓存容量，<= 0 时不缓存
	S3        S3Config
}

// Open 按配置创建存储，CacheSize > 0 时外包一层读缓存
func Open(cfg Config) (Store, error) {
	var (
		backend Store
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendFile, "":
		backend, err = NewFileStore(cfg.Path)
	case BackendPostgres:
		backend, err = NewPostgresStore(cfg.DSN)
	case BackendS3:
		backend, err = NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize <= 0 {
		return backend, nil
	}
	return NewCachedStore(backend, cfg.CacheSize)
}

func validID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return nil
}
