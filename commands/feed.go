package commands

import (
  "context"

  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type FeedHandler struct {
  Db    *gorm.DB
  Ctx   context.Context
  Hydra *app.App
}

type FeedItem struct {
  ID        string `json:"id"`
  NativeID  string `json:"native_id"`
  RequestID string `json:"request_id"`
  Approved  bool   `json:"approved"`
  Published int64  `json:"published"`
}

func NewFeedCommand() *cli.Command {
  var h FeedHandler
  return &cli.Command{
    Name:      "feed",
    Usage:     "print the unified feed, or one platform's records",
    ArgsUsage: "[platform]",
    Flags: []cli.Flag{
      &cli.BoolFlag{
        Name: "only-approved",
      },
      &cli.IntFlag{
        Name: "limit",
      },
      &cli.StringSliceFlag{
        Name: "request-id",
      },
    },
    Before: func(c *cli.Context) (err error) {
      h = FeedHandler{
        Db:  common.NewDB(),
        Ctx: context.Background(),
      }
      if h.Hydra, err = NewHydra(h.Ctx, h.Db, nil, nil); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
    Action: func(c *cli.Context) error {
      query := &models.FeedQuery{
        OnlyApproved: c.Bool("only-approved"),
        Limit:        c.Int("limit"),
        RequestIDs:   c.StringSlice("request-id"),
      }
      if err := h.Print(c.Args().First(), query); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
  }
}

func (h *FeedHandler) Print(platform string, query *models.FeedQuery) error {
  if platform == "" || platform == "aggregator" {
    entities, err := h.Hydra.Aggregator.Feed(h.Ctx, query.OnlyApproved, query.Limit)
    if err != nil {
      return err
    }
    return printJson(entities)
  }
  service, err := h.Hydra.Service(platform)
  if err != nil {
    return err
  }
  records, err := service.GetFeed(h.Ctx, query)
  if err != nil {
    return err
  }
  items := make([]*FeedItem, len(records))
  for i, record := range records {
    items[i] = &FeedItem{
      ID:        record.GetID(),
      NativeID:  record.GetNativeID(),
      RequestID: record.GetRequestID(),
      Approved:  record.IsApproved(),
      Published: record.GetPublishedAt().Unix(),
    }
  }
  return printJson(items)
}
