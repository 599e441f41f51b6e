package youtube

import (
  "context"
  "errors"
  "net/http"
  "net/http/httptest"
  "net/url"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

func newClient(srv *httptest.Server, credentials platforms.Credentials) *Client {
  return New(credentials, platforms.Options{
    Host:       srv.URL,
    AuthHost:   srv.URL,
    HttpClient: srv.Client(),
  })
}

func TestFetchPageAndDecode(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    assert.Equal(t, "/youtube/v3/playlistItems", r.URL.Path)
    assert.Equal(t, "Bearer yt-token", r.Header.Get("Authorization"))
    assert.Equal(t, "snippet", r.URL.Query().Get("part"))
    w.Write([]byte(`{"kind": "youtube#playlistItemListResponse", "items": [{
      "id": "PLi1",
      "snippet": {
        "publishedAt": "2014-01-02T03:04:05.000Z",
        "title": "Hydra",
        "description": "heads",
        "thumbnails": {"high": {"url": "http://t.jpg"}},
        "resourceId": {"kind": "youtube#video", "videoId": "abc123"}
      }
    }]}`))
  }))
  defer srv.Close()
  c := newClient(srv, platforms.Credentials{AccessToken: "yt-token"})

  records, err := c.FetchPage(context.Background(), &models.SyncRequest{
    Url: "youtube/v3/playlistItems?part=snippet&playlistId=PL1",
  }, "")
  require.NoError(t, err)
  require.Len(t, records, 1)

  record, err := c.Decode(records[0])
  require.NoError(t, err)
  item := record.(*models.YoutubeItem)
  assert.Equal(t, "PLi1", item.NativeID)
  assert.Equal(t, "Hydra", item.SnippetTitle)
  assert.Equal(t, "heads", item.SnippetDescription)
  assert.Equal(t, "abc123", item.SnippetResourceIdVideoId)
  assert.Equal(t, "http://t.jpg", item.SnippetThumbnailsHighUrl)
  assert.Equal(t, time.Date(2014, 1, 2, 3, 4, 5, 0, time.UTC), item.PublishedAt.UTC())
}

func TestAuthorizationParameters(t *testing.T) {
  c := New(platforms.Credentials{AppID: "client"}, platforms.Options{})

  params, err := c.AuthorizationParameters(context.Background(), "http://hydra.local/cb")
  require.NoError(t, err)

  parsed, err := url.Parse(params.Url)
  require.NoError(t, err)
  assert.Equal(t, "accounts.google.com", parsed.Host)
  assert.Equal(t, "offline", parsed.Query().Get("access_type"))
  assert.Equal(t, "force", parsed.Query().Get("approval_prompt"))
  assert.Equal(t, "https://www.googleapis.com/auth/youtube.readonly", parsed.Query().Get("scope"))
  assert.Equal(t, params.State, parsed.Query().Get("state"))
}

func TestAccessTokenAndRefresh(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    require.NoError(t, r.ParseForm())
    assert.Equal(t, "/o/oauth2/token", r.URL.Path)
    w.Header().Set("Content-Type", "application/json")
    switch r.Form.Get("grant_type") {
    case "authorization_code":
      w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600,"token_type":"Bearer"}`))
    case "refresh_token":
      assert.Equal(t, "r1", r.Form.Get("refresh_token"))
      w.Write([]byte(`{"access_token":"a2","expires_in":3600,"token_type":"Bearer"}`))
    }
  }))
  defer srv.Close()

  token, err := newClient(srv, platforms.Credentials{AppID: "client", AppSecret: "secret"}).AccessToken(
    context.Background(),
    nil,
    &platforms.CallbackParams{Code: "code", CallbackUrl: "http://hydra.local/cb"},
  )
  require.NoError(t, err)
  assert.Equal(t, "a1", token.AccessToken)
  assert.Equal(t, "r1", token.RefreshToken)
  assert.InDelta(t, time.Now().Unix()+3600-10, token.ExpiresAt, 5)

  c := newClient(srv, platforms.Credentials{
    AppID:        "client",
    AppSecret:    "secret",
    AccessToken:  "a1",
    RefreshToken: "r1",
    ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
  })
  assert.True(t, c.Expired(time.Now()))

  refreshed, err := c.Refresh(context.Background())
  require.NoError(t, err)
  assert.Equal(t, "a2", refreshed.AccessToken)
  assert.Equal(t, "r1", refreshed.RefreshToken)
  assert.Greater(t, refreshed.ExpiresAt, time.Now().Unix())
}

func TestRefresh_MissingConfiguration(t *testing.T) {
  c := New(platforms.Credentials{AppID: "client"}, platforms.Options{})

  _, err := c.Refresh(context.Background())

  var configErr *common.ConfigurationError
  assert.True(t, errors.As(err, &configErr))
  assert.False(t, c.Expired(time.Now()))
}

func TestRefresh_Rejected(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusBadRequest)
    w.Write([]byte(`{"error":"invalid_grant"}`))
  }))
  defer srv.Close()

  _, err := newClient(srv, platforms.Credentials{AppID: "c", AppSecret: "s", RefreshToken: "r"}).Refresh(context.Background())

  var authErr *common.AuthError
  require.True(t, errors.As(err, &authErr))
  assert.Equal(t, http.StatusBadRequest, authErr.Status)
}

func TestIsCredentialValid(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    assert.Equal(t, "/youtube/v3/activities", r.URL.Path)
    assert.Equal(t, "true", r.URL.Query().Get("mine"))
    w.Header().Set("Content-Type", "application/json")
    if r.Header.Get("Authorization") != "Bearer good" {
      w.WriteHeader(http.StatusUnauthorized)
      w.Write([]byte(`{"error":{"code":401,"message":"invalid"}}`))
      return
    }
    w.Write([]byte(`{"kind":"youtube#activityListResponse","items":[]}`))
  }))
  defer srv.Close()

  assert.True(t, newClient(srv, platforms.Credentials{AccessToken: "good"}).IsCredentialValid(context.Background()))
  assert.False(t, newClient(srv, platforms.Credentials{AccessToken: "bad"}).IsCredentialValid(context.Background()))
}
