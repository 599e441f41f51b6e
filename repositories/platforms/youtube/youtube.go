package youtube

import (
  "context"
  "net/http"
  "time"

  "github.com/rs/xid"
  "github.com/tidwall/gjson"
  "golang.org/x/oauth2"
  "golang.org/x/oauth2/google"
  "google.golang.org/api/option"
  api "google.golang.org/api/youtube/v3"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

var fields = []platforms.Field[models.YoutubeItem]{
  platforms.Text("id", func(m *models.YoutubeItem, v string) { m.NativeID = v }),
  platforms.Text("snippet_title", func(m *models.YoutubeItem, v string) { m.SnippetTitle = v }),
  platforms.Text("snippet_description", func(m *models.YoutubeItem, v string) { m.SnippetDescription = v }),
  platforms.Text("snippet_resourceId_videoId", func(m *models.YoutubeItem, v string) { m.SnippetResourceIdVideoId = v }),
  platforms.Text("snippet_thumbnails_high_url", func(m *models.YoutubeItem, v string) { m.SnippetThumbnailsHighUrl = v }),
  platforms.Date("snippet_publishedAt", common.ParseISODate, func(m *models.YoutubeItem, v time.Time) { m.PublishedAt = v }),
}

type Client struct {
  credentials platforms.Credentials
  options     platforms.Options
  base        string
  http        *http.Client
  bearer      *http.Client
}

func New(credentials platforms.Credentials, options platforms.Options) *Client {
  c := &Client{
    credentials: credentials,
    options:     options,
    base:        platforms.BaseUrl(options.Host, config.YOUTUBE_HOST),
    http:        options.Client(),
  }
  c.bearer = oauth2.NewClient(
    context.WithValue(context.Background(), oauth2.HTTPClient, c.http),
    oauth2.StaticTokenSource(&oauth2.Token{
      AccessToken: credentials.AccessToken,
      TokenType:   "Bearer",
    }),
  )
  return c
}

func (c *Client) Platform() string {
  return models.PLATFORM_YOUTUBE
}

func (c *Client) oauth(callbackUrl string) *oauth2.Config {
  endpoint := google.Endpoint
  if c.options.AuthHost != "" {
    authBase := platforms.BaseUrl(c.options.AuthHost, "")
    endpoint = oauth2.Endpoint{
      AuthURL:  authBase + "/o/oauth2/auth",
      TokenURL: authBase + "/o/oauth2/token",
    }
  }
  endpoint.AuthStyle = oauth2.AuthStyleInParams
  return &oauth2.Config{
    ClientID:     c.credentials.AppID,
    ClientSecret: c.credentials.AppSecret,
    RedirectURL:  callbackUrl,
    Scopes:       []string{api.YoutubeReadonlyScope},
    Endpoint:     endpoint,
  }
}

func (c *Client) FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error) {
  endpoint, query, err := platforms.ResolveUrl(c.base, request.Url)
  if err != nil {
    return nil, err
  }
  params := platforms.MergeParams(query, request.Params)

  body, err := platforms.Get(ctx, c.bearer, c.Platform(), endpoint, params, nil)
  if err != nil {
    return nil, err
  }
  return platforms.Envelope(c.Platform(), body, false, "data", "items")
}

func (c *Client) NativeID(raw gjson.Result) (string, bool) {
  return platforms.NativeID(raw, "id")
}

func (c *Client) Decode(raw gjson.Result) (models.PlatformRecord, error) {
  item := &models.YoutubeItem{}
  if _, err := platforms.Decode(c.Platform(), raw, item, fields); err != nil {
    return nil, err
  }
  return item, nil
}

func (c *Client) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  state := xid.New().String()
  return &platforms.AuthorizationParameters{
    Url: c.oauth(callbackUrl).AuthCodeURL(
      state,
      oauth2.AccessTypeOffline,
      oauth2.SetAuthURLParam("approval_prompt", "force"),
    ),
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
  return c.token(token), nil
}

func (c *Client) token(token *oauth2.Token) *platforms.Token {
  out := platforms.TokenFrom(token, c.options.Clock())
  if out.ExpiresAt > 0 {
    out.ExpiresAt -= config.YOUTUBE_EXPIRE_MARGIN
  }
  return out
}

func (c *Client) Expired(now time.Time) bool {
  return c.credentials.RefreshToken != "" &&
    c.credentials.ExpiresAt > 0 &&
    now.Unix() >= c.credentials.ExpiresAt
}

// Refresh exchanges the stored refresh token; the caller persists the result.
func (c *Client) Refresh(ctx context.Context) (*platforms.Token, error) {
  if c.credentials.RefreshToken == "" || c.credentials.AppID == "" || c.credentials.AppSecret == "" {
    return nil, &common.ConfigurationError{
      Platform: c.Platform(),
      Reason:   "refresh token, consumer key and consumer secret are required",
    }
  }
  source := c.oauth("").TokenSource(c.options.Context(ctx), &oauth2.Token{
    RefreshToken: c.credentials.RefreshToken,
    Expiry:       time.Unix(1, 0),
  })
  token, err := source.Token()
  if err != nil {
    return nil, platforms.AuthErrorFrom(c.Platform(), err)
  }
  refreshed := c.token(token)
  if refreshed.RefreshToken == "" {
    refreshed.RefreshToken = c.credentials.RefreshToken
  }
  return refreshed, nil
}

func (c *Client) IsCredentialValid(ctx context.Context) bool {
  service, err := api.NewService(
    ctx,
    option.WithHTTPClient(c.bearer),
    option.WithEndpoint(c.base+"/"),
  )
  if err != nil {
    common.GetLogger().WithField("platform", c.Platform()).Warnln("youtube service init failed", err)
    return false
  }
  _, err = service.Activities.List([]string{"id"}).Mine(true).Context(ctx).Do()
  if err != nil {
    common.GetLogger().WithField("platform", c.Platform()).Debugln("credentials check failed", err)
    return false
  }
  return true
}
