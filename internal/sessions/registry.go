package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kaigo-records/care-records/backend/internal/bulk"
	"github.com/kaigo-records/care-records/backend/internal/config"
)

var ErrSessionNotFound = errors.New("批量录入会话不存在或已过期")

// Registry 把批量录入会话以 JSON 保存在 redis 中，每次写入都会刷新过期时间
// 关闭页面后会话在过期后自动丢弃，已提交的记录不受影响
type Registry struct {
	cfg         *config.Config
	redisClient *redis.Client
}

func NewRegistry(cfg *config.Config, rdb *redis.Client) *Registry {
	return &Registry{
		cfg:         cfg,
		redisClient: rdb,
	}
}

func (r *Registry) key(id string) string {
	return r.cfg.BulkSession.KeyPrefix + id
}

func (r *Registry) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Redis.OperationExpiration)*time.Second)
}

func (r *Registry) Save(session *bulk.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ctx, cancel := r.operationContext()
	defer cancel()

	expiration := time.Duration(r.cfg.BulkSession.Expiration) * time.Second
	return r.redisClient.Set(ctx, r.key(session.ID), data, expiration).Err()
}

func (r *Registry) Load(id string) (*bulk.Session, error) {
	ctx, cancel := r.operationContext()
	defer cancel()

	data, err := r.redisClient.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session := &bulk.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *Registry) Delete(id string) error {
	ctx, cancel := r.operationContext()
	defer cancel()

	return r.redisClient.Del(ctx, r.key(id)).Err()
}
