package platforms

import (
  "context"
  "encoding/json"
  "fmt"
  "sync"
  "time"

  "github.com/go-redis/redis/v8"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/repositories/platforms"
)

const sessionTTL = 15 * time.Minute

// AuthSession is what survives between the authorize redirect and the callback.
type AuthSession struct {
  Parameters  *platforms.AuthorizationParameters `json:"parameters"`
  CallbackUrl string                             `json:"callback_url"`
}

func (s *AuthSession) Key() string {
  if s.Parameters.State != "" {
    return s.Parameters.State
  }
  return s.Parameters.SessionToken
}

type SessionStore interface {
  Put(ctx context.Context, platform string, session *AuthSession) error
  Take(ctx context.Context, platform string, key string) (*AuthSession, error)
}

type RedisSessions struct {
  Rdb *redis.Client
}

func (s *RedisSessions) Put(ctx context.Context, platform string, session *AuthSession) error {
  data, err := json.Marshal(session)
  if err != nil {
    return err
  }
  return s.Rdb.SetEX(ctx, fmt.Sprintf(config.REDIS_KEY_AUTH_SESSION, platform, session.Key()), data, sessionTTL).Err()
}

func (s *RedisSessions) Take(ctx context.Context, platform string, key string) (*AuthSession, error) {
  redisKey := fmt.Sprintf(config.REDIS_KEY_AUTH_SESSION, platform, key)
  data, err := s.Rdb.Get(ctx, redisKey).Bytes()
  if err == redis.Nil {
    return nil, &common.NotFoundError{Entity: "authorization session", Key: key}
  }
  if err != nil {
    return nil, err
  }
  s.Rdb.Del(ctx, redisKey)
  var session *AuthSession
  if err := json.Unmarshal(data, &session); err != nil {
    return nil, err
  }
  return session, nil
}

type MemorySessions struct {
  mu       sync.Mutex
  sessions map[string]*AuthSession
}

func (s *MemorySessions) Put(ctx context.Context, platform string, session *AuthSession) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  if s.sessions == nil {
    s.sessions = map[string]*AuthSession{}
  }
  s.sessions[platform+"/"+session.Key()] = session
  return nil
}

func (s *MemorySessions) Take(ctx context.Context, platform string, key string) (*AuthSession, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  session, ok := s.sessions[platform+"/"+key]
  if !ok {
    return nil, &common.NotFoundError{Entity: "authorization session", Key: key}
  }
  delete(s.sessions, platform+"/"+key)
  return session, nil
}
