package twitter

import (
  "context"
  "fmt"
  "net/http"
  "net/url"
  "path"
  "regexp"
  "strconv"
  "strings"
  "time"

  "github.com/dghubble/oauth1"
  "github.com/tidwall/gjson"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

var numeric = regexp.MustCompile(`^[0-9]+$`)

var invalidStatus = regexp.MustCompile(`(?s)^oauth1: invalid status ([0-9]+): (.*)$`)

var fields = []platforms.Field[models.Tweet]{
  platforms.Text("id_str", func(m *models.Tweet, v string) { m.NativeID = v }),
  platforms.Text("text", func(m *models.Tweet, v string) { m.Text = v }),
  platforms.Text("source", func(m *models.Tweet, v string) { m.Source = v }),
  platforms.Text("user_id_str", func(m *models.Tweet, v string) { m.UserID = v }),
  platforms.Text("user_screen_name", func(m *models.Tweet, v string) { m.UserScreenName = v }),
  platforms.Text("user_profile_image_url_https", func(m *models.Tweet, v string) { m.UserProfileImageUrlHttps = v }),
  platforms.Text("entities_media_0_media_url", func(m *models.Tweet, v string) { m.EntitiesMedia0MediaUrl = v }),
  platforms.Date("created_at", common.ParseRubyDate, func(m *models.Tweet, v time.Time) { m.PublishedAt = v }),
}

type Client struct {
  credentials platforms.Credentials
  options     platforms.Options
  base        string
  oauth       *oauth1.Config
  http        *http.Client
}

func New(credentials platforms.Credentials, options platforms.Options) *Client {
  c := &Client{
    credentials: credentials,
    options:     options,
    base:        platforms.BaseUrl(options.Host, config.TWITTER_HOST),
  }
  c.oauth = &oauth1.Config{
    ConsumerKey:    credentials.AppID,
    ConsumerSecret: credentials.AppSecret,
    Endpoint: oauth1.Endpoint{
      RequestTokenURL: c.base + "/oauth/request_token",
      AuthorizeURL:    c.base + "/oauth/authorize",
      AccessTokenURL:  c.base + "/oauth/access_token",
    },
  }
  base := options.Client()
  c.oauth.HTTPClient = base
  c.http = c.oauth.Client(
    context.Background(),
    oauth1.NewToken(credentials.AccessToken, credentials.AccessTokenSecret),
  )
  if transport, ok := c.http.Transport.(*oauth1.Transport); ok {
    transport.Base = base.Transport
  }
  c.http.Timeout = base.Timeout
  return c
}

func (c *Client) Platform() string {
  return models.PLATFORM_TWITTER
}

// endpoint appends the .json extension when the configured path carries none
func (c *Client) endpoint(rawUrl string) (endpoint string, query url.Values, err error) {
  endpoint, query, err = platforms.ResolveUrl(c.base, rawUrl)
  if err != nil {
    return
  }
  if path.Ext(endpoint) == "" {
    endpoint += ".json"
  }
  return
}

func (c *Client) FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error) {
  endpoint, query, err := c.endpoint(request.Url)
  if err != nil {
    return nil, err
  }
  params := platforms.MergeParams(query, request.Params)
  if numeric.MatchString(cursor) {
    params.Set("since_id", cursor)
  }
  params.Set("count", fmt.Sprintf("%d", config.TWITTER_PAGE_COUNT))

  body, err := platforms.Get(ctx, c.http, c.Platform(), endpoint, params, nil)
  if err != nil {
    return nil, err
  }
  return platforms.Envelope(c.Platform(), body, true, "statuses")
}

func (c *Client) NativeID(raw gjson.Result) (string, bool) {
  return platforms.NativeID(raw, "id_str")
}

func (c *Client) Decode(raw gjson.Result) (models.PlatformRecord, error) {
  tweet := &models.Tweet{}
  flat, err := platforms.Decode(c.Platform(), raw, tweet, fields)
  if err != nil {
    return nil, err
  }
  if tweet.UserID == "" {
    tweet.UserID = flat.String("user_id")
  }
  return tweet, nil
}

func (c *Client) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  oauth := *c.oauth
  oauth.CallbackURL = callbackUrl
  requestToken, requestSecret, err := oauth.RequestToken()
  if err != nil {
    return nil, c.authError(err)
  }
  authorizationUrl, err := oauth.AuthorizationURL(requestToken)
  if err != nil {
    return nil, c.authError(err)
  }
  return &platforms.AuthorizationParameters{
    Url:           authorizationUrl.String(),
    SessionToken:  requestToken,
    SessionSecret: requestSecret,
  }, nil
}

func (c *Client) AccessToken(
  ctx context.Context,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) (*platforms.Token, error) {
  if session == nil || session.SessionToken == "" {
    return nil, &common.ConfigurationError{
      Platform: c.Platform(),
      Reason:   "request token missing from session",
    }
  }
  if params.OAuthToken != "" && params.OAuthToken != session.SessionToken {
    return nil, &common.AuthError{
      Platform: c.Platform(),
      Body:     "oauth_token does not match the stored request token",
    }
  }
  accessToken, accessSecret, err := c.oauth.AccessToken(
    session.SessionToken,
    session.SessionSecret,
    strings.TrimSpace(params.OAuthVerifier),
  )
  if err != nil {
    return nil, c.authError(err)
  }
  return &platforms.Token{
    AccessToken:       accessToken,
    AccessTokenSecret: accessSecret,
  }, nil
}

// authError recovers the token endpoint status, which oauth1 only reports as text.
func (c *Client) authError(err error) error {
  match := invalidStatus.FindStringSubmatch(err.Error())
  if match == nil {
    return platforms.AuthErrorFrom(c.Platform(), err)
  }
  status, _ := strconv.Atoi(match[1])
  return &common.AuthError{
    Platform: c.Platform(),
    Status:   status,
    Body:     match[2],
  }
}

func (c *Client) IsCredentialValid(ctx context.Context) bool {
  _, err := platforms.Get(ctx, c.http, c.Platform(), c.base+"/1.1/account/verify_credentials.json", nil, nil)
  if err != nil {
    common.GetLogger().WithField("platform", c.Platform()).Debugln("credentials check failed", err)
    return false
  }
  return true
}
