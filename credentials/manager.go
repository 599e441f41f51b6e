package credentials

import (
  "context"
  "errors"
  "sync"
  "time"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/repositories/platforms"
)

type State string

const (
  STATE_UNCONFIGURED State = "unconfigured"
  STATE_CONFIGURED   State = "configured"
  STATE_INVALID      State = "invalid"
  // a silent refresh failed and the client still runs on the previous token
  STATE_STALE State = "stale"
)

type Factory func(credentials platforms.Credentials, options platforms.Options) platforms.Client

type Status struct {
  Platform  string `json:"platform"`
  State     State  `json:"state"`
  Warning   string `json:"warning,omitempty"`
  ExpiresAt int64  `json:"expires_at,omitempty"`
}

type Manager struct {
  Platform string
  Store    *Store
  Factory  Factory
  Options  platforms.Options

  mu          sync.Mutex
  config      *PlatformConfig
  credentials platforms.Credentials
  client      platforms.Client
  state       State
  warning     error
}

func NewManager(platform string, store *Store, factory Factory, options platforms.Options) *Manager {
  return &Manager{
    Platform: platform,
    Store:    store,
    Factory:  factory,
    Options:  options,
    state:    STATE_UNCONFIGURED,
  }
}

// Load reads the platform section and binds a client to it.
func (m *Manager) Load(ctx context.Context) error {
  cfg, err := m.Store.Platform(m.Platform)
  if err != nil {
    return err
  }
  m.mu.Lock()
  m.config = cfg
  m.mu.Unlock()
  m.SetAuthentication(ctx, platforms.Credentials{
    AppID:             cfg.ConsumerKey,
    AppSecret:         cfg.ConsumerSecret,
    AccessToken:       cfg.Token,
    AccessTokenSecret: cfg.Secret,
    RefreshToken:      cfg.RefreshToken,
    ExpiresAt:         cfg.ExpireDate,
  })
  return nil
}

func (m *Manager) Config() *PlatformConfig {
  m.mu.Lock()
  defer m.mu.Unlock()
  if m.config == nil {
    return &PlatformConfig{}
  }
  return m.config
}

func (m *Manager) AutoApprove() bool {
  return m.Config().IsAutoApprove()
}

func (m *Manager) options() platforms.Options {
  options := m.Options
  if options.Host == "" && m.config != nil {
    options.Host = m.config.Host
  }
  return options
}

// SetAuthentication builds a fresh client from credentials, then tries a silent refresh.
// A failed refresh leaves the manager in STATE_STALE instead of failing.
func (m *Manager) SetAuthentication(ctx context.Context, credentials platforms.Credentials) {
  m.mu.Lock()
  m.bind(credentials)
  m.mu.Unlock()

  if m.State() == STATE_UNCONFIGURED {
    return
  }
  if _, err := m.RefreshIfExpired(ctx); err != nil {
    m.mu.Lock()
    m.state = STATE_STALE
    m.warning = err
    m.mu.Unlock()
    common.GetLogger().WithField("platform", m.Platform).Warnln("silent token refresh failed, keeping the previous token", err)
  }
}

func (m *Manager) bind(credentials platforms.Credentials) {
  m.credentials = credentials
  m.client = m.Factory(credentials, m.options())
  m.warning = nil
  if credentials.AppID == "" || credentials.AppSecret == "" {
    m.state = STATE_UNCONFIGURED
    return
  }
  m.state = STATE_CONFIGURED
}

func (m *Manager) State() State {
  m.mu.Lock()
  defer m.mu.Unlock()
  return m.state
}

func (m *Manager) Status() *Status {
  m.mu.Lock()
  defer m.mu.Unlock()
  status := &Status{
    Platform:  m.Platform,
    State:     m.state,
    ExpiresAt: m.credentials.ExpiresAt,
  }
  if m.warning != nil {
    status.Warning = m.warning.Error()
  }
  return status
}

func (m *Manager) Credentials() platforms.Credentials {
  m.mu.Lock()
  defer m.mu.Unlock()
  return m.credentials
}

// Client returns the current client after refreshing an expired token.
func (m *Manager) Client(ctx context.Context) (platforms.Client, error) {
  if m.State() == STATE_UNCONFIGURED {
    return nil, &common.ConfigurationError{
      Platform: m.Platform,
      Reason:   "consumer key and consumer secret are required",
    }
  }
  if _, err := m.RefreshIfExpired(ctx); err != nil {
    return nil, err
  }
  m.mu.Lock()
  defer m.mu.Unlock()
  return m.client, nil
}

// RefreshIfExpired is a no-op unless the platform supports refresh and the token expired.
// The refreshed token is written to the store before the client is rebuilt with it.
func (m *Manager) RefreshIfExpired(ctx context.Context) (string, error) {
  m.mu.Lock()
  defer m.mu.Unlock()

  refresher, ok := m.client.(platforms.Refresher)
  if !ok || !refresher.Expired(m.Options.Clock()) {
    return m.credentials.AccessToken, nil
  }
  token, err := refresher.Refresh(ctx)
  if err != nil {
    return "", err
  }

  credentials := m.credentials
  credentials.AccessToken = token.AccessToken
  credentials.ExpiresAt = token.ExpiresAt
  if token.RefreshToken != "" {
    credentials.RefreshToken = token.RefreshToken
  }
  if err := m.persist(credentials); err != nil {
    return "", err
  }
  m.bind(credentials)
  common.GetLogger().WithField("platform", m.Platform).Infoln("access token refreshed, expires at", credentials.ExpiresAt)
  return credentials.AccessToken, nil
}

func (m *Manager) persist(credentials platforms.Credentials) error {
  cfg, err := m.Store.Platform(m.Platform)
  if err != nil {
    return err
  }
  cfg.ConsumerKey = credentials.AppID
  cfg.ConsumerSecret = credentials.AppSecret
  cfg.Token = credentials.AccessToken
  cfg.Secret = credentials.AccessTokenSecret
  cfg.RefreshToken = credentials.RefreshToken
  cfg.ExpireDate = credentials.ExpiresAt
  if err := m.Store.SavePlatform(m.Platform, cfg); err != nil {
    return err
  }
  m.config = cfg
  return nil
}

func (m *Manager) Authorize(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  if m.State() == STATE_UNCONFIGURED {
    return nil, &common.ConfigurationError{
      Platform: m.Platform,
      Reason:   "consumer key and consumer secret are required",
    }
  }
  m.mu.Lock()
  client := m.client
  m.mu.Unlock()
  return client.AuthorizationParameters(ctx, callbackUrl)
}

// CompleteAuthorization exchanges the callback for a token, persists it and rebinds the client.
func (m *Manager) CompleteAuthorization(
  ctx context.Context,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) (*platforms.Token, error) {
  if params == nil {
    return nil, errors.New("callback parameters missing")
  }
  if m.State() == STATE_UNCONFIGURED {
    return nil, &common.ConfigurationError{
      Platform: m.Platform,
      Reason:   "consumer key and consumer secret are required",
    }
  }
  m.mu.Lock()
  client := m.client
  m.mu.Unlock()

  token, err := client.AccessToken(ctx, session, params)
  if err != nil {
    return nil, err
  }

  m.mu.Lock()
  defer m.mu.Unlock()
  credentials := m.credentials
  credentials.AccessToken = token.AccessToken
  credentials.AccessTokenSecret = token.AccessTokenSecret
  credentials.RefreshToken = token.RefreshToken
  credentials.ExpiresAt = token.ExpiresAt
  if err := m.persist(credentials); err != nil {
    return nil, err
  }
  m.bind(credentials)
  return token, nil
}

func (m *Manager) IsCredentialValid(ctx context.Context) bool {
  client, err := m.Client(ctx)
  if err != nil {
    return false
  }
  valid := client.IsCredentialValid(ctx)

  m.mu.Lock()
  defer m.mu.Unlock()
  if !valid {
    m.state = STATE_INVALID
  } else if m.state == STATE_INVALID {
    m.state = STATE_CONFIGURED
  }
  return valid
}

func (m *Manager) ExpiresIn() time.Duration {
  m.mu.Lock()
  defer m.mu.Unlock()
  if m.credentials.ExpiresAt == 0 {
    return 0
  }
  return time.Unix(m.credentials.ExpiresAt, 0).Sub(m.Options.Clock())
}
