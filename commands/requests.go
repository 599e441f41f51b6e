package commands

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "log"

  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories"
)

type RequestsHandler struct {
  Db         *gorm.DB
  Ctx        context.Context
  Repository *repositories.RequestsRepository
}

func NewRequestsCommand() *cli.Command {
  var h RequestsHandler
  return &cli.Command{
    Name:  "requests",
    Usage: "manage the twitter api requests",
    Before: func(c *cli.Context) error {
      h = RequestsHandler{
        Db:  common.NewDB(),
        Ctx: context.Background(),
      }
      h.Repository = &repositories.RequestsRepository{
        Db:       h.Db,
        Platform: models.PLATFORM_TWITTER,
      }
      return nil
    },
    Subcommands: []*cli.Command{
      {
        Name:      "add",
        Usage:     "create or replace a request",
        ArgsUsage: "<id> <url>",
        Flags: []cli.Flag{
          &cli.StringFlag{
            Name:  "mapped-entity",
            Value: models.PLATFORM_TWITTER,
          },
          &cli.Int64Flag{
            Name:  "refresh-life-time",
            Usage: "seconds between two runs",
          },
          &cli.StringFlag{
            Name:  "order-field",
            Value: "published_at",
          },
          &cli.BoolFlag{
            Name:  "use-since-id",
            Value: true,
          },
          &cli.StringFlag{
            Name:  "params",
            Usage: "extra query parameters as a json object",
          },
        },
        Action: func(c *cli.Context) error {
          request := &models.SyncRequest{
            ID:              c.Args().Get(0),
            Url:             c.Args().Get(1),
            MappedEntity:    c.String("mapped-entity"),
            RefreshLifeTime: c.Int64("refresh-life-time"),
            OrderField:      c.String("order-field"),
            UseSinceID:      c.Bool("use-since-id"),
          }
          if err := h.Add(request, c.String("params")); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
      {
        Name:  "list",
        Usage: "",
        Action: func(c *cli.Context) error {
          if err := h.List(); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
      {
        Name:      "remove",
        Usage:     "",
        ArgsUsage: "<id>",
        Action: func(c *cli.Context) error {
          if err := h.Remove(c.Args().First()); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
    },
  }
}

func (h *RequestsHandler) Add(request *models.SyncRequest, params string) error {
  if request.ID == "" || request.Url == "" {
    return errors.New("id and url are required")
  }
  if !models.IsPlatform(request.MappedEntity) {
    return errors.New(fmt.Sprintf("mapped entity %v not supported", request.MappedEntity))
  }
  if params != "" {
    if err := json.Unmarshal([]byte(params), &request.Params); err != nil {
      return errors.New(fmt.Sprintf("params not valid: %v", err))
    }
  }
  if err := h.Repository.Apply(h.Ctx, request); err != nil {
    return err
  }
  log.Println("request saved", request.ID)
  return nil
}

func (h *RequestsHandler) List() error {
  requests, err := h.Repository.Requests(h.Ctx)
  if err != nil {
    return err
  }
  return printJson(requests)
}

func (h *RequestsHandler) Remove(id string) error {
  if id == "" {
    return errors.New("id is required")
  }
  if err := h.Repository.Delete(h.Ctx, id); err != nil {
    return err
  }
  log.Println("request removed", id)
  return nil
}
