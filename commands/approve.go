package commands

import (
  "context"
  "log"

  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
)

type ApproveHandler struct {
  Db    *gorm.DB
  Ctx   context.Context
  Hydra *app.App
}

func NewApproveCommand() *cli.Command {
  var h ApproveHandler
  return &cli.Command{
    Name:      "approve",
    Usage:     "approve or reject a unified entity or a platform record",
    ArgsUsage: "<aggregator|platform> <id>",
    Flags: []cli.Flag{
      &cli.BoolFlag{
        Name: "reject",
      },
      &cli.StringFlag{
        Name:  "request-id",
        Usage: "platform records: the request the record must belong to",
      },
    },
    Before: func(c *cli.Context) (err error) {
      h = ApproveHandler{
        Db:  common.NewDB(),
        Ctx: context.Background(),
      }
      if h.Hydra, err = NewHydra(h.Ctx, h.Db, nil, nil); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
    Action: func(c *cli.Context) error {
      target := c.Args().Get(0)
      id := c.Args().Get(1)
      if target == "" || id == "" {
        return cli.Exit("target and id are required", 1)
      }
      if err := h.Apply(target, id, !c.Bool("reject"), c.String("request-id")); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
  }
}

func (h *ApproveHandler) Apply(target string, id string, approved bool, requestID string) (err error) {
  if target == "aggregator" {
    approved, err = h.Hydra.Aggregator.SetApproved(h.Ctx, id, approved)
  } else {
    approved, err = h.platform(target, id, approved, requestID)
  }
  if err != nil {
    return
  }
  log.Println("approved", target, id, approved)
  return
}

func (h *ApproveHandler) platform(platform string, id string, approved bool, requestID string) (bool, error) {
  service, err := h.Hydra.Service(platform)
  if err != nil {
    return false, err
  }
  return service.SetApproved(h.Ctx, id, approved, requestID)
}
