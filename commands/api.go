package commands

import (
  "context"
  "fmt"
  "log"
  "net/http"

  "github.com/go-chi/chi/v5"
  "github.com/go-redis/redis/v8"
  "github.com/nats-io/nats.go"
  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/api/v1"
  "hydra.local/social-aggregator/api/v1/platforms"
  "hydra.local/social-aggregator/common"
)

type ApiHandler struct {
  Db   *gorm.DB
  Rdb  *redis.Client
  Nats *nats.Conn
  Ctx  context.Context
}

func NewApiCommand() *cli.Command {
  var h ApiHandler
  return &cli.Command{
    Name:  "api",
    Usage: "",
    Before: func(c *cli.Context) error {
      h = ApiHandler{
        Db:   common.NewDB(),
        Rdb:  common.NewRedis(),
        Nats: common.NewNats(),
        Ctx:  context.Background(),
      }
      return nil
    },
    Action: func(c *cli.Context) error {
      if err := h.Run(); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
  }
}

func (h *ApiHandler) Run() error {
  log.Println("api running...")
  defer h.Nats.Close()

  hydra, err := NewHydra(h.Ctx, h.Db, h.Rdb, h.Nats)
  if err != nil {
    return err
  }

  apiContext := &common.ApiContext{
    Db:   h.Db,
    Rdb:  h.Rdb,
    Ctx:  h.Ctx,
    Nats: h.Nats,
  }
  sessions := &platforms.RedisSessions{
    Rdb: h.Rdb,
  }

  r := chi.NewRouter()
  r.Route("/v1", func(r chi.Router) {
    r.Mount("/feed", v1.NewFeedRouter(apiContext, hydra))
    r.Mount("/platforms", v1.NewPlatformsRouter(apiContext, hydra, sessions))
  })

  return http.ListenAndServe(
    fmt.Sprintf("127.0.0.1:%v", common.GetEnvString("HYDRA_API_PORT")),
    r,
  )
}
