package commands

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/go-redis/redis/v8"
  "github.com/nats-io/nats.go"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/syncer"
)

// NewHydra wires the application; approval changes go over nats when a connection is given.
func NewHydra(ctx context.Context, db *gorm.DB, rdb *redis.Client, nc *nats.Conn) (*app.App, error) {
  options := app.Options{
    Db:         db,
    ConfigPath: app.ConfigPath(),
  }
  if rdb != nil {
    options.Locker = &common.RedisLocker{
      Rdb: rdb,
    }
  }
  if nc != nil {
    options.Events = &syncer.NatsSink{
      Conn: nc,
    }
  }
  return app.New(ctx, options)
}

func printJson(data interface{}) error {
  buf, err := json.MarshalIndent(data, "", "  ")
  if err != nil {
    return err
  }
  fmt.Println(string(buf))
  return nil
}
