package instagram

import (
  "context"
  "net/http"
  "net/url"
  "time"

  "github.com/rs/xid"
  "github.com/tidwall/gjson"
  "golang.org/x/oauth2"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

var fields = []platforms.Field[models.InstagramMedia]{
  platforms.Text("id", func(m *models.InstagramMedia, v string) { m.NativeID = v }),
  platforms.Text("caption_text", func(m *models.InstagramMedia, v string) { m.CaptionText = v }),
  platforms.Text("user_id", func(m *models.InstagramMedia, v string) { m.UserID = v }),
  platforms.Text("user_username", func(m *models.InstagramMedia, v string) { m.UserUsername = v }),
  platforms.Text("user_profile_picture", func(m *models.InstagramMedia, v string) { m.UserProfilePicture = v }),
  platforms.Text("images_standard_resolution_url", func(m *models.InstagramMedia, v string) { m.ImagesStandardResolutionUrl = v }),
  platforms.Date("created_time", common.ParseEpochDate, func(m *models.InstagramMedia, v time.Time) { m.PublishedAt = v }),
}

type Client struct {
  credentials platforms.Credentials
  options     platforms.Options
  base        string
  http        *http.Client
}

func New(credentials platforms.Credentials, options platforms.Options) *Client {
  return &Client{
    credentials: credentials,
    options:     options,
    base:        platforms.BaseUrl(options.Host, config.INSTAGRAM_HOST),
    http:        options.Client(),
  }
}

func (c *Client) Platform() string {
  return models.PLATFORM_INSTAGRAM
}

func (c *Client) oauth(callbackUrl string) *oauth2.Config {
  return &oauth2.Config{
    ClientID:     c.credentials.AppID,
    ClientSecret: c.credentials.AppSecret,
    RedirectURL:  callbackUrl,
    Endpoint: oauth2.Endpoint{
      AuthURL:   c.base + "/oauth/authorize/",
      TokenURL:  c.base + "/oauth/access_token",
      AuthStyle: oauth2.AuthStyleInParams,
    },
  }
}

func (c *Client) FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error) {
  endpoint, query, err := platforms.ResolveUrl(c.base, request.Url)
  if err != nil {
    return nil, err
  }
  params := platforms.MergeParams(query, request.Params)
  params.Set("access_token", c.credentials.AccessToken)

  body, err := platforms.Get(ctx, c.http, c.Platform(), endpoint, params, nil)
  if err != nil {
    return nil, err
  }
  return platforms.Envelope(c.Platform(), body, false, "data")
}

func (c *Client) NativeID(raw gjson.Result) (string, bool) {
  return platforms.NativeID(raw, "id")
}

func (c *Client) Decode(raw gjson.Result) (models.PlatformRecord, error) {
  media := &models.InstagramMedia{}
  if _, err := platforms.Decode(c.Platform(), raw, media, fields); err != nil {
    return nil, err
  }
  return media, nil
}

func (c *Client) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  state := xid.New().String()
  return &platforms.AuthorizationParameters{
    Url:   c.oauth(callbackUrl).AuthCodeURL(state),
    State: state,
  }, nil
}

func (c *Client) AccessToken(
  ctx context.Context,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) (*platforms.Token, error) {
  if params.Code == "" {
    return nil, &common.ConfigurationError{
      Platform: c.Platform(),
      Reason:   "authorization code missing",
    }
  }
  if session != nil && session.State != "" && params.State != session.State {
    return nil, &common.AuthError{
      Platform: c.Platform(),
      Body:     "state does not match",
    }
  }
  token, err := c.oauth(params.CallbackUrl).Exchange(c.options.Context(ctx), params.Code)
  if err != nil {
    return nil, platforms.AuthErrorFrom(c.Platform(), err)
  }
  return platforms.TokenFrom(token, c.options.Clock()), nil
}

func (c *Client) IsCredentialValid(ctx context.Context) bool {
  params := url.Values{}
  params.Set("access_token", c.credentials.AccessToken)
  _, err := platforms.Get(ctx, c.http, c.Platform(), c.base+"/v1/users/self/feed", params, nil)
  if err != nil {
    common.GetLogger().WithField("platform", c.Platform()).Debugln("credentials check failed", err)
    return false
  }
  return true
}
