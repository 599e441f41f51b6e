package facebook

import (
  "context"
  "io"
  "net/http"
  "net/url"
  "strings"
  "time"

  "github.com/rs/xid"
  "github.com/tidwall/gjson"
  "golang.org/x/oauth2"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

var fields = []platforms.Field[models.FacebookPost]{
  platforms.Text("id", func(m *models.FacebookPost, v string) { m.NativeID = v }),
  platforms.Text("message", func(m *models.FacebookPost, v string) { m.Message = v }),
  platforms.Text("story", func(m *models.FacebookPost, v string) { m.Story = v }),
  platforms.Text("from_id", func(m *models.FacebookPost, v string) { m.FromID = v }),
  platforms.Text("from_name", func(m *models.FacebookPost, v string) { m.FromName = v }),
  platforms.Text("picture", func(m *models.FacebookPost, v string) { m.Picture = v }),
  platforms.Text("link", func(m *models.FacebookPost, v string) { m.Link = v }),
  platforms.Text("source", func(m *models.FacebookPost, v string) { m.Source = v }),
  platforms.Text("type", func(m *models.FacebookPost, v string) { m.Type = v }),
  platforms.Date("created_time", common.ParseGraphDate, func(m *models.FacebookPost, v time.Time) { m.PublishedAt = v }),
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
    base:        platforms.BaseUrl(options.Host, config.FACEBOOK_HOST),
    http:        options.Client(),
  }
}

func (c *Client) Platform() string {
  return models.PLATFORM_FACEBOOK
}

func (c *Client) oauth(callbackUrl string) *oauth2.Config {
  return &oauth2.Config{
    ClientID:     c.credentials.AppID,
    ClientSecret: c.credentials.AppSecret,
    RedirectURL:  callbackUrl,
    Endpoint: oauth2.Endpoint{
      AuthURL:   c.base + "/oauth/authorize",
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
  post := &models.FacebookPost{}
  if _, err := platforms.Decode(c.Platform(), raw, post, fields); err != nil {
    return nil, err
  }
  return post, nil
}

func (c *Client) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  state := xid.New().String()
  return &platforms.AuthorizationParameters{
    Url:   c.oauth(callbackUrl).AuthCodeURL(state),
    State: state,
  }, nil
}

// AccessToken trades a callback code or a short-lived user token for a long-lived one.
func (c *Client) AccessToken(
  ctx context.Context,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) (*platforms.Token, error) {
  shortLived := params.ShortLivedToken
  if shortLived == "" {
    if params.Code == "" {
      return nil, &common.ConfigurationError{
        Platform: c.Platform(),
        Reason:   "neither code nor short lived token given",
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
    shortLived = token.AccessToken
  }
  return c.exchange(ctx, shortLived)
}

func (c *Client) exchange(ctx context.Context, shortLived string) (*platforms.Token, error) {
  form := url.Values{}
  form.Set("client_id", c.credentials.AppID)
  form.Set("client_secret", c.credentials.AppSecret)
  form.Set("grant_type", "fb_exchange_token")
  form.Set("fb_exchange_token", shortLived)

  req, err := http.NewRequestWithContext(ctx, "POST", c.base+"/oauth/access_token", strings.NewReader(form.Encode()))
  if err != nil {
    return nil, err
  }
  req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
  resp, err := c.http.Do(req)
  if err != nil {
    return nil, platforms.AuthErrorFrom(c.Platform(), err)
  }
  defer resp.Body.Close()
  body, _ := io.ReadAll(resp.Body)
  if resp.StatusCode != http.StatusOK {
    return nil, &common.AuthError{
      Platform: c.Platform(),
      Status:   resp.StatusCode,
      Body:     string(body),
    }
  }

  token := &platforms.Token{}
  if gjson.ValidBytes(body) && gjson.ParseBytes(body).IsObject() {
    result := gjson.ParseBytes(body)
    token.AccessToken = result.Get("access_token").String()
    token.ExpiresIn = result.Get("expires_in").Int()
  } else {
    values, _ := url.ParseQuery(string(body))
    token.AccessToken = values.Get("access_token")
    token.ExpiresIn = gjson.Parse(values.Get("expires")).Int()
  }
  if token.AccessToken == "" {
    return nil, &common.AuthError{
      Platform: c.Platform(),
      Status:   resp.StatusCode,
      Body:     string(body),
    }
  }
  if token.ExpiresIn > 0 {
    token.ExpiresAt = c.options.Clock().Unix() + token.ExpiresIn
  }
  return token, nil
}

func (c *Client) IsCredentialValid(ctx context.Context) bool {
  params := url.Values{}
  params.Set("access_token", c.credentials.AccessToken)
  _, err := platforms.Get(ctx, c.http, c.Platform(), c.base+"/me/feed", params, nil)
  if err != nil {
    common.GetLogger().WithField("platform", c.Platform()).Debugln("credentials check failed", err)
    return false
  }
  return true
}
