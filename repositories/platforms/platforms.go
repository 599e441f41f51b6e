package platforms

import (
  "context"
  "errors"
  "fmt"
  "io"
  "net/http"
  "net/url"
  "strings"
  "time"

  "github.com/tidwall/gjson"
  "golang.org/x/oauth2"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
)

type Credentials struct {
  AppID             string
  AppSecret         string
  AccessToken       string
  AccessTokenSecret string
  RefreshToken      string
  ExpiresAt         int64
}

func (c Credentials) HasAccessToken() bool {
  return c.AccessToken != ""
}

type Token struct {
  AccessToken       string `json:"access_token"`
  AccessTokenSecret string `json:"access_token_secret,omitempty"`
  RefreshToken      string `json:"refresh_token,omitempty"`
  ExpiresIn         int64  `json:"expires_in,omitempty"`
  ExpiresAt         int64  `json:"expires_at,omitempty"`
}

type AuthorizationParameters struct {
  Url           string `json:"url"`
  SessionToken  string `json:"session_token,omitempty"`
  SessionSecret string `json:"session_secret,omitempty"`
  State         string `json:"state,omitempty"`
}

type CallbackParams struct {
  CallbackUrl     string
  Code            string
  State           string
  OAuthToken      string
  OAuthVerifier   string
  ShortLivedToken string
}

type Options struct {
  Host       string
  HttpClient *http.Client
  // AuthHost overrides the oauth endpoints of platforms that authorize on a separate host
  AuthHost string
  Now      func() time.Time
}

func (o Options) Client() *http.Client {
  if o.HttpClient != nil {
    return o.HttpClient
  }
  return common.NewHttpClient()
}

func (o Options) Clock() time.Time {
  if o.Now != nil {
    return o.Now()
  }
  return time.Now()
}

func (o Options) Context(ctx context.Context) context.Context {
  return context.WithValue(ctx, oauth2.HTTPClient, o.Client())
}

type Client interface {
  Platform() string
  FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error)
  NativeID(raw gjson.Result) (string, bool)
  Decode(raw gjson.Result) (models.PlatformRecord, error)
  AuthorizationParameters(ctx context.Context, callbackUrl string) (*AuthorizationParameters, error)
  AccessToken(ctx context.Context, session *AuthorizationParameters, params *CallbackParams) (*Token, error)
  IsCredentialValid(ctx context.Context) bool
}

type Refresher interface {
  Expired(now time.Time) bool
  Refresh(ctx context.Context) (*Token, error)
}

func BaseUrl(host string, fallback string) string {
  if host == "" {
    host = fallback
  }
  host = strings.TrimRight(host, "/")
  if strings.Contains(host, "://") {
    return host
  }
  return "https://" + host
}

// ResolveUrl joins a configured request path onto the platform base and returns its query separately.
func ResolveUrl(base string, rawUrl string) (endpoint string, query url.Values, err error) {
  parsed, err := url.Parse(strings.TrimSpace(rawUrl))
  if err != nil {
    return
  }
  query = parsed.Query()
  parsed.RawQuery = ""
  parsed.Fragment = ""
  if parsed.IsAbs() {
    endpoint = parsed.String()
    return
  }
  endpoint = base + "/" + strings.TrimLeft(parsed.String(), "/")
  return
}

func MergeParams(query url.Values, params map[string]interface{}) url.Values {
  merged := url.Values{}
  for key, values := range query {
    for _, value := range values {
      merged.Add(key, value)
    }
  }
  for key, value := range params {
    merged.Set(key, fmt.Sprintf("%v", value))
  }
  return merged
}

func Get(
  ctx context.Context,
  client *http.Client,
  platform string,
  endpoint string,
  params url.Values,
  headers map[string]string,
) (body []byte, err error) {
  req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
  if err != nil {
    return
  }
  if len(params) > 0 {
    req.URL.RawQuery = params.Encode()
  }
  for key, val := range headers {
    req.Header.Set(key, val)
  }
  resp, err := client.Do(req)
  if err != nil {
    return
  }
  defer resp.Body.Close()

  body, err = io.ReadAll(resp.Body)
  if err != nil {
    return
  }
  if resp.StatusCode != http.StatusOK {
    err = &common.ApiError{
      Platform: platform,
      Status:   resp.StatusCode,
      Body:     string(body),
    }
    return
  }
  return
}

// Envelope unwraps the first present key; a bare array is accepted only when allowed.
func Envelope(platform string, body []byte, bareArray bool, keys ...string) ([]gjson.Result, error) {
  if !gjson.ValidBytes(body) {
    return nil, &common.MalformedResponseError{
      Platform: platform,
      Reason:   "response is not json",
      Body:     string(body),
    }
  }
  result := gjson.ParseBytes(body)
  if bareArray && result.IsArray() {
    return result.Array(), nil
  }
  for _, key := range keys {
    if data := result.Get(key); data.Exists() && data.IsArray() {
      return data.Array(), nil
    }
  }
  return nil, &common.MalformedResponseError{
    Platform: platform,
    Reason:   fmt.Sprintf("no %v entry was returned", strings.Join(keys, "/")),
    Body:     string(body),
  }
}

func AuthErrorFrom(platform string, err error) error {
  var retrieveErr *oauth2.RetrieveError
  if errors.As(err, &retrieveErr) {
    status := 0
    if retrieveErr.Response != nil {
      status = retrieveErr.Response.StatusCode
    }
    return &common.AuthError{
      Platform: platform,
      Status:   status,
      Body:     string(retrieveErr.Body),
    }
  }
  var authErr *common.AuthError
  if errors.As(err, &authErr) {
    return err
  }
  return &common.AuthError{
    Platform: platform,
    Body:     err.Error(),
  }
}

func TokenFrom(token *oauth2.Token, now time.Time) *Token {
  out := &Token{
    AccessToken:  token.AccessToken,
    RefreshToken: token.RefreshToken,
  }
  if !token.Expiry.IsZero() {
    out.ExpiresIn = int64(token.Expiry.Sub(now).Seconds())
    out.ExpiresAt = token.Expiry.Unix()
  }
  return out
}

type Field[T any] struct {
  Key string
  Set func(record *T, value gjson.Result) error
}

func Text[T any](key string, set func(record *T, value string)) Field[T] {
  return Field[T]{
    Key: key,
    Set: func(record *T, value gjson.Result) error {
      if value.Type != gjson.Null {
        set(record, value.String())
      }
      return nil
    },
  }
}

func Date[T any](key string, parse common.DateParser, set func(record *T, value time.Time)) Field[T] {
  return Field[T]{
    Key: key,
    Set: func(record *T, value gjson.Result) error {
      if value.Type == gjson.Null {
        return nil
      }
      t, err := parse(value)
      if err != nil {
        return err
      }
      set(record, t)
      return nil
    },
  }
}

// Decode flattens raw and applies every field whose key is present.
func Decode[T any](platform string, raw gjson.Result, record *T, fields []Field[T]) (*common.FlatMap, error) {
  flat := common.Flatten(raw, config.FLATTEN_GLUE)
  for _, field := range fields {
    if !flat.Has(field.Key) {
      continue
    }
    if err := field.Set(record, flat.Get(field.Key)); err != nil {
      return nil, &common.MalformedResponseError{
        Platform: platform,
        Reason:   fmt.Sprintf("field %v: %v", field.Key, err),
        Body:     raw.Raw,
      }
    }
  }
  return flat, nil
}

func NativeID(raw gjson.Result, key string) (string, bool) {
  value := raw.Get(key)
  if !value.Exists() || value.Type == gjson.Null {
    return "", false
  }
  id := value.String()
  return id, id != ""
}
