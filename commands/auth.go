package commands

import (
  "context"
  "fmt"

  "github.com/urfave/cli/v2"
  "gorm.io/gorm"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/repositories/platforms"
)

type AuthHandler struct {
  Db    *gorm.DB
  Ctx   context.Context
  Hydra *app.App
}

func NewAuthCommand() *cli.Command {
  var h AuthHandler
  return &cli.Command{
    Name:  "auth",
    Usage: "run the oauth handshake of a platform from the terminal",
    Before: func(c *cli.Context) (err error) {
      h = AuthHandler{
        Db:  common.NewDB(),
        Ctx: context.Background(),
      }
      if h.Hydra, err = NewHydra(h.Ctx, h.Db, nil, nil); err != nil {
        return cli.Exit(err.Error(), 1)
      }
      return nil
    },
    Subcommands: []*cli.Command{
      {
        Name:      "url",
        Usage:     "print the authorization url and the session to keep for the token step",
        ArgsUsage: "<platform>",
        Flags: []cli.Flag{
          &cli.StringFlag{
            Name:     "callback-url",
            Required: true,
          },
        },
        Action: func(c *cli.Context) error {
          if err := h.Url(c.Args().First(), c.String("callback-url")); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
      {
        Name:      "token",
        Usage:     "exchange the callback parameters for an access token and store it",
        ArgsUsage: "<platform>",
        Flags: []cli.Flag{
          &cli.StringFlag{Name: "callback-url"},
          &cli.StringFlag{Name: "code"},
          &cli.StringFlag{Name: "state"},
          &cli.StringFlag{Name: "oauth-token"},
          &cli.StringFlag{Name: "oauth-verifier"},
          &cli.StringFlag{Name: "session-token"},
          &cli.StringFlag{Name: "session-secret"},
          &cli.StringFlag{Name: "short-lived-token"},
        },
        Action: func(c *cli.Context) error {
          session := &platforms.AuthorizationParameters{
            SessionToken:  c.String("session-token"),
            SessionSecret: c.String("session-secret"),
            State:         c.String("state"),
          }
          params := &platforms.CallbackParams{
            CallbackUrl:     c.String("callback-url"),
            Code:            c.String("code"),
            State:           c.String("state"),
            OAuthToken:      c.String("oauth-token"),
            OAuthVerifier:   c.String("oauth-verifier"),
            ShortLivedToken: c.String("short-lived-token"),
          }
          if err := h.Token(c.Args().First(), session, params); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
      {
        Name:      "status",
        Usage:     "",
        ArgsUsage: "<platform>",
        Flags: []cli.Flag{
          &cli.BoolFlag{
            Name:  "check",
            Usage: "call the platform to verify the token",
          },
        },
        Action: func(c *cli.Context) error {
          if err := h.Status(c.Args().First(), c.Bool("check")); err != nil {
            return cli.Exit(err.Error(), 1)
          }
          return nil
        },
      },
    },
  }
}

func (h *AuthHandler) Url(platform string, callbackUrl string) error {
  service, err := h.Hydra.Service(platform)
  if err != nil {
    return err
  }
  parameters, err := service.GetAuthorizationParameters(h.Ctx, callbackUrl)
  if err != nil {
    return err
  }
  return printJson(parameters)
}

func (h *AuthHandler) Token(
  platform string,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) error {
  service, err := h.Hydra.Service(platform)
  if err != nil {
    return err
  }
  token, err := service.GetAccessToken(h.Ctx, session, params)
  if err != nil {
    return err
  }
  fmt.Println("token stored, expires at", token.ExpiresAt)
  return nil
}

func (h *AuthHandler) Status(platform string, check bool) error {
  service, err := h.Hydra.Service(platform)
  if err != nil {
    return err
  }
  if check {
    service.IsCredentialValid(h.Ctx)
  }
  return printJson(service.CredentialStatus())
}
