package store

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-dashcompose/components/dashboard"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "dashcompose"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key; defaults to "dashcompose".
	Prefix string
}

// RedisStore shares the library across nodes. Documents live in a hash per
// collection and insertion order in a companion list.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ dashboard.Store = (*RedisStore)(nil)

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close releases the client.
func (s *RedisStore) Close() error { return s.client.Close() }

type redisKeys struct {
	folders, folderOrder, dashboards, dashboardOrder string
}

func (s *RedisStore) keys() redisKeys {
	return redisKeys{
		folders:        s.prefix + ":folders",
		folderOrder:    s.prefix + ":folders:order",
		dashboards:     s.prefix + ":dashboards",
		dashboardOrder: s.prefix + ":dashboards:order",
	}
}

func (s *RedisStore) ListFolders(ctx context.Context) ([]dashboard.Folder, error) {
	k := s.keys()
	var out []dashboard.Folder
	err := s.list(ctx, k.folders, k.folderOrder, func(raw string) error {
		var f dashboard.Folder
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	return out, err
}

func (s *RedisStore) ListDashboards(ctx context.Context) ([]dashboard.Dashboard, error) {
	k := s.keys()
	var out []dashboard.Dashboard
	err := s.list(ctx, k.dashboards, k.dashboardOrder, func(raw string) error {
		var d dashboard.Dashboard
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (s *RedisStore) list(ctx context.Context, hash, order string, decode func(string) error) error {
	ids, err := s.client.LRange(ctx, order, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("store: redis read %s: %w", order, err)
	}
	if len(ids) == 0 {
		return nil
	}
	values, err := s.client.HMGet(ctx, hash, ids...).Result()
	if err != nil {
		return fmt.Errorf("store: redis read %s: %w", hash, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			return fmt.Errorf("%w: %s %s: %v", dashboard.ErrMalformedSnapshot, hash, ids[i], err)
		}
	}
	return nil
}

func (s *RedisStore) CreateFolder(ctx context.Context, folder dashboard.Folder) error {
	k := s.keys()
	return s.create(ctx, k.folders, k.folderOrder, folder.ID, folder)
}

func (s *RedisStore) CreateDashboard(ctx context.Context, d dashboard.Dashboard) error {
	k := s.keys()
	return s.create(ctx, k.dashboards, k.dashboardOrder, d.ID, d)
}

func (s *RedisStore) create(ctx context.Context, hash, order, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	added, err := s.client.HSetNX(ctx, hash, id, raw).Result()
	if err != nil {
		return fmt.Errorf("store: redis write %s: %w", id, err)
	}
	if !added {
		return fmt.Errorf("store: %s already exists", id)
	}
	if err := s.client.RPush(ctx, order, id).Err(); err != nil {
		return fmt.Errorf("store: redis write %s: %w", order, err)
	}
	return nil
}

func (s *RedisStore) UpdateFolder(ctx context.Context, id string, patch dashboard.FolderPatch) error {
	var f dashboard.Folder
	if err := s.get(ctx, s.keys().folders, id, &f, dashboard.ErrFolderNotFound); err != nil {
		return err
	}
	return s.put(ctx, s.keys().folders, id, patch.Apply(f))
}

func (s *RedisStore) UpdateDashboard(ctx context.Context, id string, patch dashboard.DashboardPatch) error {
	var d dashboard.Dashboard
	if err := s.get(ctx, s.keys().dashboards, id, &d, dashboard.ErrDashboardNotFound); err != nil {
		return err
	}
	return s.put(ctx, s.keys().dashboards, id, patch.Apply(d))
}

func (s *RedisStore) get(ctx context.Context, hash, id string, out any, notFound error) error {
	raw, err := s.client.HGet(ctx, hash, id).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	if err != nil {
		return fmt.Errorf("store: redis read %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %s: %v", dashboard.ErrMalformedSnapshot, id, err)
	}
	return nil
}

func (s *RedisStore) put(ctx context.Context, hash, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	if err := s.client.HSet(ctx, hash, id, raw).Err(); err != nil {
		return fmt.Errorf("store: redis write %s: %w", id, err)
	}
	return nil
}

// DeleteFolder removes the folder and its dashboards in one MULTI/EXEC.
func (s *RedisStore) DeleteFolder(ctx context.Context, id string) error {
	k := s.keys()
	exists, err := s.client.HExists(ctx, k.folders, id).Result()
	if err != nil {
		return fmt.Errorf("store: redis read %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", dashboard.ErrFolderNotFound, id)
	}
	victims, err := s.folderDashboards(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, k.folders, id)
		pipe.LRem(ctx, k.folderOrder, 0, id)
		for _, dashboardID := range victims {
			pipe.HDel(ctx, k.dashboards, dashboardID)
			pipe.LRem(ctx, k.dashboardOrder, 0, dashboardID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis delete folder %s: %w", id, err)
	}
	return nil
}

// folderDashboards returns the ids of folderID's dashboards. Undecodable
// entries are included so a cascade clears them.
func (s *RedisStore) folderDashboards(ctx context.Context, folderID string) ([]string, error) {
	all, err := s.client.HGetAll(ctx, s.keys().dashboards).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis read %s: %w", s.keys().dashboards, err)
	}
	var ids []string
	for dashboardID, raw := range all {
		var d dashboard.Dashboard
		if err := json.Unmarshal([]byte(raw), &d); err != nil || d.FolderID == folderID {
			ids = append(ids, dashboardID)
		}
	}
	return ids, nil
}

func (s *RedisStore) DeleteDashboard(ctx context.Context, id string) error {
	k := s.keys()
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, k.dashboards, id)
		pipe.LRem(ctx, k.dashboardOrder, 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis delete dashboard %s: %w", id, err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrDashboardNotFound, id)
	}
	return nil
}
