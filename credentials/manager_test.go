package credentials

import (
  "context"
  "errors"
  "os"
  "path/filepath"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
  "github.com/tidwall/gjson"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

type fakeClient struct {
  credentials platforms.Credentials
  now         time.Time
  refresh     func() (*platforms.Token, error)
  valid       bool
}

func (c *fakeClient) Platform() string { return models.PLATFORM_YOUTUBE }

func (c *fakeClient) FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error) {
  return nil, nil
}

func (c *fakeClient) NativeID(raw gjson.Result) (string, bool) { return raw.Get("id").String(), true }

func (c *fakeClient) Decode(raw gjson.Result) (models.PlatformRecord, error) { return &models.YoutubeItem{}, nil }

func (c *fakeClient) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  return &platforms.AuthorizationParameters{Url: "https://auth.example/?cb=" + callbackUrl, State: "s"}, nil
}

func (c *fakeClient) AccessToken(ctx context.Context, session *platforms.AuthorizationParameters, params *platforms.CallbackParams) (*platforms.Token, error) {
  if params.Code != "good" {
    return nil, &common.AuthError{Platform: "youtube", Status: 400}
  }
  return &platforms.Token{AccessToken: "fresh", RefreshToken: "r2", ExpiresAt: c.now.Unix() + 3590}, nil
}

func (c *fakeClient) IsCredentialValid(ctx context.Context) bool { return c.valid }

func (c *fakeClient) Expired(now time.Time) bool {
  return c.credentials.RefreshToken != "" && c.credentials.ExpiresAt > 0 && now.Unix() >= c.credentials.ExpiresAt
}

func (c *fakeClient) Refresh(ctx context.Context) (*platforms.Token, error) {
  return c.refresh()
}

func writeConfig(t *testing.T, content string) *Store {
  path := filepath.Join(t.TempDir(), "hydra.yml")
  require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
  return NewStore(path)
}

func TestManager_Unconfigured(t *testing.T) {
  store := writeConfig(t, "virtual_identity_aggregator:\n  auto_approve: false\n")
  manager := NewManager(models.PLATFORM_YOUTUBE, store, func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return &fakeClient{credentials: c}
  }, platforms.Options{})

  require.NoError(t, manager.Load(context.Background()))
  assert.Equal(t, STATE_UNCONFIGURED, manager.State())

  _, err := manager.Client(context.Background())
  var configErr *common.ConfigurationError
  assert.True(t, errors.As(err, &configErr))
  assert.True(t, manager.AutoApprove())
}

func TestManager_RefreshPersistsBeforeUse(t *testing.T) {
  now := time.Unix(1700000000, 0)
  store := writeConfig(t, `
virtual_identity_youtube:
  consumer_key: client
  consumer_secret: secret
  token: old
  refresh_token: r1
  expire_date: 1699999000
`)
  var bound []string
  manager := NewManager(models.PLATFORM_YOUTUBE, store, func(c platforms.Credentials, o platforms.Options) platforms.Client {
    bound = append(bound, c.AccessToken)
    if c.AccessToken == "new" {
      cfg, err := store.Platform(models.PLATFORM_YOUTUBE)
      require.NoError(t, err)
      assert.Equal(t, "new", cfg.Token)
      assert.Equal(t, now.Unix()+3590, cfg.ExpireDate)
    }
    return &fakeClient{credentials: c, refresh: func() (*platforms.Token, error) {
      return &platforms.Token{AccessToken: "new", ExpiresAt: now.Unix() + 3590}, nil
    }}
  }, platforms.Options{Now: func() time.Time { return now }})

  require.NoError(t, manager.Load(context.Background()))

  assert.Equal(t, []string{"old", "new"}, bound)
  assert.Equal(t, STATE_CONFIGURED, manager.State())
  assert.Equal(t, "r1", manager.Credentials().RefreshToken)

  token, err := manager.RefreshIfExpired(context.Background())
  require.NoError(t, err)
  assert.Equal(t, "new", token)
  assert.Len(t, bound, 2)
}

func TestManager_SilentRefreshFailureIsObservable(t *testing.T) {
  now := time.Unix(1700000000, 0)
  store := writeConfig(t, `
virtual_identity_youtube:
  consumer_key: client
  consumer_secret: secret
  token: stale
  refresh_token: r1
  expire_date: 1699999000
`)
  manager := NewManager(models.PLATFORM_YOUTUBE, store, func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return &fakeClient{credentials: c, refresh: func() (*platforms.Token, error) {
      return nil, &common.ConfigurationError{Platform: "youtube", Reason: "refresh token missing"}
    }}
  }, platforms.Options{Now: func() time.Time { return now }})

  require.NoError(t, manager.Load(context.Background()))

  status := manager.Status()
  assert.Equal(t, STATE_STALE, status.State)
  assert.Contains(t, status.Warning, "refresh token missing")
  assert.Equal(t, "stale", manager.Credentials().AccessToken)

  _, err := manager.Client(context.Background())
  var configErr *common.ConfigurationError
  assert.True(t, errors.As(err, &configErr))
}

func TestManager_CompleteAuthorization(t *testing.T) {
  now := time.Unix(1700000000, 0)
  store := writeConfig(t, `
virtual_identity_youtube:
  consumer_key: client
  consumer_secret: secret
  token: ""
`)
  manager := NewManager(models.PLATFORM_YOUTUBE, store, func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return &fakeClient{credentials: c, now: now}
  }, platforms.Options{Now: func() time.Time { return now }})
  require.NoError(t, manager.Load(context.Background()))

  session, err := manager.Authorize(context.Background(), "http://hydra.local/cb")
  require.NoError(t, err)
  assert.Equal(t, "s", session.State)

  _, err = manager.CompleteAuthorization(context.Background(), session, &platforms.CallbackParams{Code: "bad"})
  var authErr *common.AuthError
  require.True(t, errors.As(err, &authErr))

  token, err := manager.CompleteAuthorization(context.Background(), session, &platforms.CallbackParams{Code: "good"})
  require.NoError(t, err)
  assert.Equal(t, "fresh", token.AccessToken)

  cfg, err := store.Platform(models.PLATFORM_YOUTUBE)
  require.NoError(t, err)
  assert.Equal(t, "fresh", cfg.Token)
  assert.Equal(t, "r2", cfg.RefreshToken)
  assert.Equal(t, "fresh", manager.Credentials().AccessToken)
}

func TestManager_IsCredentialValid(t *testing.T) {
  store := writeConfig(t, `
virtual_identity_twitter:
  consumer_key: key
  consumer_secret: secret
  token: t
  secret: s
`)
  valid := false
  manager := NewManager(models.PLATFORM_TWITTER, store, func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return &fakeClient{credentials: c, valid: valid}
  }, platforms.Options{})
  require.NoError(t, manager.Load(context.Background()))

  assert.False(t, manager.IsCredentialValid(context.Background()))
  assert.Equal(t, STATE_INVALID, manager.State())

  valid = true
  manager.SetAuthentication(context.Background(), manager.Credentials())
  assert.True(t, manager.IsCredentialValid(context.Background()))
  assert.Equal(t, STATE_CONFIGURED, manager.State())
}
