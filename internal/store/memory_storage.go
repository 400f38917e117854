package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/spf13/cast"
)

// MemoryStorage adapts the in-process fiber memory storage to the Storage
// interface. It backs caches in tests and in deploys without redis. Values
// are stored JSON-encoded; attribute operations rewrite the whole object and
// per-field expiry is not supported (the object's TTL applies).
type MemoryStorage struct {
	mem *memory.Storage
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{mem: memory.New()}
}

func (s *MemoryStorage) Get(ctx context.Context, key string, val any) error {
	raw, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(raw, val)
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if expiresIn < 0 {
		expiresIn = 0
	}
	return s.mem.Set(key, raw, expiresIn)
}

func (s *MemoryStorage) Save(ctx context.Context, key string, val any) error {
	return s.Set(ctx, key, val, 0)
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	raw, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrNotFound
	}
	return s.mem.Delete(key)
}

func (s *MemoryStorage) Expire(ctx context.Context, key string, expiresAt time.Time) error {
	raw, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrNotFound
	}
	return s.mem.Set(key, raw, time.Until(expiresAt))
}

func (s *MemoryStorage) getObject(key string) (map[string]json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	raw, err := s.mem.Get(key)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (s *MemoryStorage) saveObject(key string, obj map[string]json.RawMessage) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return s.mem.Set(key, raw, 0)
}

func (s *MemoryStorage) SetAttr(ctx context.Context, key string, field string, val any) error {
	obj, err := s.getObject(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	obj[field] = raw
	return s.saveObject(key, obj)
}

func (s *MemoryStorage) GetAttr(ctx context.Context, key, field string, val any) error {
	obj, err := s.getObject(key)
	if err != nil {
		return err
	}
	raw, ok := obj[field]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, val)
}

func (s *MemoryStorage) IncrAttr(ctx context.Context, key, field string, delta int64) (int64, error) {
	obj, err := s.getObject(key)
	if err != nil {
		return 0, err
	}
	var current int64
	if raw, ok := obj[field]; ok {
		current = cast.ToInt64(string(raw))
	}
	current += delta
	raw, err := json.Marshal(current)
	if err != nil {
		return 0, err
	}
	obj[field] = raw
	return current, s.saveObject(key, obj)
}

func (s *MemoryStorage) ExpireAttr(ctx context.Context, key string, expires time.Time, fields ...string) error {
	// Per-field TTLs are a redis hash feature; the whole object expires
	// together here.
	return nil
}
