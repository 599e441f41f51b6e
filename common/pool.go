package common

import (
  "context"
  "database/sql"
  "errors"
  "fmt"
  "strconv"
  "strings"
  "sync"
  "time"

  "github.com/go-redis/redis/v8"
  "github.com/hibiken/asynq"
  "github.com/nats-io/nats.go"
  "github.com/rs/xid"
  "gorm.io/driver/mysql"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/config"
)

var (
  dbPool *sql.DB
)

type ApiContext struct {
  Db   *gorm.DB
  Rdb  *redis.Client
  Ctx  context.Context
  Nats *nats.Conn
  Mux  sync.Mutex
}

type NatsContext struct {
  Db   *gorm.DB
  Rdb  *redis.Client
  Ctx  context.Context
  Conn *nats.Conn
}

type AnsqServerContext struct {
  Db   *gorm.DB
  Rdb  *redis.Client
  Ctx  context.Context
  Mux  *asynq.ServeMux
  Nats *nats.Conn
}

type AnsqClientContext struct {
  Db   *gorm.DB
  Rdb  *redis.Client
  Ctx  context.Context
  Conn *asynq.Client
}

type Mutex struct {
  rdb   *redis.Client
  ctx   context.Context
  key   string
  value string
}

func NewRedis() *redis.Client {
  return redis.NewClient(&redis.Options{
    Addr:     GetEnvString("REDIS_HOST"),
    Password: GetEnvString("REDIS_PASSWORD"),
    DB:       GetEnvInt("REDIS_DB"),
  })
}

func dbDriver() string {
  return GetEnvStringOr("DB_DRIVER", "postgres")
}

func NewDBPool() *sql.DB {
  if dbPool == nil {
    driver := "pgx"
    if dbDriver() == "mysql" {
      driver = "mysql"
    }
    pool, err := sql.Open(driver, GetEnvString("DB_DSN"))
    if err != nil {
      panic(err)
    }
    pool.SetMaxIdleConns(10)
    pool.SetMaxOpenConns(20)
    pool.SetConnMaxLifetime(5 * time.Minute)
    dbPool = pool
  }
  return dbPool
}

func NewDB() *gorm.DB {
  var dialector gorm.Dialector
  switch dbDriver() {
  case "postgres":
    dialector = postgres.New(postgres.Config{
      Conn: NewDBPool(),
    })
  case "mysql":
    dialector = mysql.New(mysql.Config{
      Conn: NewDBPool(),
    })
  default:
    panic(fmt.Sprintf("unsupported db driver %v", dbDriver()))
  }
  db, err := gorm.Open(dialector, &gorm.Config{})
  if errors.Is(err, context.DeadlineExceeded) {
    return NewDB()
  }
  if err != nil {
    panic(err)
  }
  return db
}

func NewAsynqServer() *asynq.Server {
  rdb := asynq.RedisClientOpt{
    Addr: GetEnvString("ASYNQ_REDIS_ADDR"),
    DB:   GetEnvInt("ASYNQ_REDIS_DB"),
  }
  queues := make(map[string]int)
  for _, item := range GetEnvArray("ASYNQ_QUEUE") {
    data := strings.Split(item, ",")
    if len(data) != 2 {
      continue
    }
    weight, _ := strconv.Atoi(data[1])
    queues[data[0]] = weight
  }
  if len(queues) == 0 {
    queues[config.ASYNQ_QUEUE_SYNC] = 1
  }
  return asynq.NewServer(rdb, asynq.Config{
    Concurrency: GetEnvIntOr("ASYNQ_CONCURRENCY", 1),
    Queues:      queues,
  })
}

func NewAsynqClient() *asynq.Client {
  return asynq.NewClient(asynq.RedisClientOpt{
    Addr: GetEnvString("ASYNQ_REDIS_ADDR"),
    DB:   GetEnvInt("ASYNQ_REDIS_DB"),
  })
}

func NewNats() *nats.Conn {
  nc, err := nats.Connect(
    GetEnvStringOr("NATS_URL", nats.DefaultURL),
    nats.Token(GetEnvString("NATS_TOKEN")),
  )
  if err != nil {
    panic(err)
  }
  return nc
}

func NewMutex(
  rdb *redis.Client,
  ctx context.Context,
  key string,
) *Mutex {
  return &Mutex{
    rdb:   rdb,
    ctx:   ctx,
    key:   key,
    value: xid.New().String(),
  }
}

func (m *Mutex) Lock(ttl time.Duration) bool {
  result, err := m.rdb.SetNX(
    m.ctx,
    m.key,
    m.value,
    ttl,
  ).Result()
  if err != nil {
    return false
  }
  return result
}

func (m *Mutex) Unlock() {
  script := redis.NewScript(`
  if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
  else
    return 0
  end
  `)
  script.Run(m.ctx, m.rdb, []string{m.key}, m.value).Result()
}

type Locker interface {
  Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool)
}

type RedisLocker struct {
  Rdb *redis.Client
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool) {
  mutex := NewMutex(l.Rdb, ctx, key)
  if !mutex.Lock(ttl) {
    return func() {}, false
  }
  return mutex.Unlock, true
}

// LocalLocker guards a single process, used when no redis is configured.
type LocalLocker struct {
  mu   sync.Mutex
  held map[string]bool
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool) {
  l.mu.Lock()
  defer l.mu.Unlock()
  if l.held == nil {
    l.held = map[string]bool{}
  }
  if l.held[key] {
    return func() {}, false
  }
  l.held[key] = true
  return func() {
    l.mu.Lock()
    delete(l.held, key)
    l.mu.Unlock()
  }, true
}
