// Package cache wraps a storage.Storage with a redis read-through cache
// for single-student reads.
//
// Each student projection is stored as JSON under "student:{id}" with a
// TTL. Every write that can change a projection deletes the affected keys
// after the inner store succeeds and bumps a per-student version counter
// under "student:{id}:version". A read only fills the cache when that
// counter is unchanged since before it queried the inner store, so a
// projection read before a concurrent write is never stored after the
// write's eviction. Redis failures never fail a request: they are logged
// and the inner store answers instead.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
)

const (
	studentInfoPrefix = "student:"
	versionSuffix     = ":version"
)

// errStale aborts a cache fill that raced with a write.
var errStale = errors.New("cache: projection changed during read")

// Cached decorates a storage.Storage.
type Cached struct {
	storage.Storage

	client *redis.Client
	ttl    time.Duration
}

var _ storage.Storage = (*Cached)(nil)

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// New wraps inner with a cache backed by client.
func New(inner storage.Storage, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{Storage: inner, client: client, ttl: ttl}
}

func studentKey(id int64) string {
	return studentInfoPrefix + strconv.FormatInt(id, 10)
}

func versionKey(id int64) string {
	return studentKey(id) + versionSuffix
}

// GetStudentByID serves from redis when possible and fills the key on a miss.
func (c *Cached) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	key := studentKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var student types.Student
		if err := json.Unmarshal(data, &student); err == nil {
			return student, nil
		}
		slog.Warn("discarding corrupt cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		slog.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	before, verr := version(ctx, c.client, id)

	student, err := c.Storage.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, err
	}

	if verr != nil {
		slog.Warn("cache version read failed", slog.String("key", key), slog.String("error", verr.Error()))
		return student, nil
	}
	c.fill(ctx, id, before, student)

	return student, nil
}

// fill stores student under its key unless the version counter moved
// away from before.
func (c *Cached) fill(ctx context.Context, id int64, before int64, student types.Student) {
	key := studentKey(id)

	data, err := json.Marshal(student)
	if err != nil {
		slog.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := version(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != before {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, versionKey(id))

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		slog.Debug("skipping stale cache fill", slog.String("key", key))
	default:
		slog.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// version returns the write counter of a student, 0 when none was recorded.
func version(ctx context.Context, g getter, id int64) (int64, error) {
	v, err := g.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *Cached) UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) error {
	if err := c.Storage.UpdateStudentByID(ctx, id, patch); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *Cached) DeleteStudentByID(ctx context.Context, id int64) error {
	if err := c.Storage.DeleteStudentByID(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *Cached) CreateLecture(ctx context.Context, lecture types.Lecture) (int64, error) {
	id, err := c.Storage.CreateLecture(ctx, lecture)
	if err != nil {
		return 0, err
	}
	c.evict(ctx, lecture.StudentID)
	return id, nil
}

// UpdateLectureByID evicts both the previous and the new owner, since a
// rebind moves the lecture between two projections.
func (c *Cached) UpdateLectureByID(ctx context.Context, id int64, patch types.LecturePatch) error {
	previous, err := c.Storage.GetLectureByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.Storage.UpdateLectureByID(ctx, id, patch); err != nil {
		return err
	}

	owners := []int64{previous.StudentID}
	if patch.StudentID != nil && *patch.StudentID != previous.StudentID {
		owners = append(owners, *patch.StudentID)
	}
	c.evict(ctx, owners...)
	return nil
}

// Close closes the redis client and then the inner store.
func (c *Cached) Close() error {
	if err := c.client.Close(); err != nil {
		slog.Warn("closing redis client", slog.String("error", err.Error()))
	}
	return c.Storage.Close()
}

// evict bumps the version of each student and then drops its projection.
func (c *Cached) evict(ctx context.Context, ids ...int64) {
	keys := make([]string, 0, len(ids))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			keys = append(keys, studentKey(id))
			pipe.Incr(ctx, versionKey(id))
			pipe.Del(ctx, studentKey(id))
		}
		return nil
	})
	if err != nil {
		slog.Warn("cache eviction failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
