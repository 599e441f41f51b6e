package commands

import (
  "context"

  "github.com/go-redis/redis/v8"
  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
)

type SyncHandler struct {
  Db    *gorm.DB
  Rdb   *redis.Client
  Ctx   context.Context
  Hydra *app.App
}

func NewSyncCommand() *cli.Command {
  var h SyncHandler
  return &cli.Command{
    Name:      "sync",
    Usage:     "sync a platform, or all harvested platforms into the unified feed",
    ArgsUsage: "<twitter|facebook|instagram|youtube|aggregator>",
    Flags: []cli.Flag{
      &cli.StringSliceFlag{
        Name:  "request-id",
        Usage: "only run these requests, ignoring their cool-down",
      },
      &cli.BoolFlag{
        Name:  "unify-only",
        Usage: "aggregator: skip the platform syncs",
      },
    },
    Before: func(c *cli.Context) (err error) {
      h = SyncHandler{
        Db:  common.NewDB(),
        Rdb: common.NewRedis(),
        Ctx: context.Background(),
      }
      if h.Hydra, err = NewHydra(h.Ctx, h.Db, h.Rdb, nil); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
    Action: func(c *cli.Context) error {
      if err := h.Run(c.Args().First(), c.StringSlice("request-id"), c.Bool("unify-only")); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
  }
}

func (h *SyncHandler) Run(target string, requestIDs []string, unifyOnly bool) error {
  if target == "" || target == "aggregator" {
    results, err := h.Hydra.Aggregator.SyncDatabase(h.Ctx, requestIDs, unifyOnly)
    if err != nil {
      return err
    }
    return printJson(results)
  }
  service, err := h.Hydra.Service(target)
  if err != nil {
    return err
  }
  results, err := service.SyncDatabase(h.Ctx, requestIDs)
  if err != nil {
    return err
  }
  return printJson(results)
}
