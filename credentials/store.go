package credentials

import (
  "errors"
  "fmt"
  "os"
  "path/filepath"
  "strings"
  "sync"

  "gopkg.in/yaml.v3"

  "hydra.local/social-aggregator/models"
)

const (
  sectionPrefix     = "virtual_identity_"
  aggregatorSection = "virtual_identity_aggregator"
)

var defaultRequests = map[string][]string{
  models.PLATFORM_FACEBOOK:  {"me/feed"},
  models.PLATFORM_INSTAGRAM: {"v1/users/self/feed"},
  models.PLATFORM_YOUTUBE:   {"youtube/v3/activities?part=snippet&mine=true"},
}

type PlatformConfig struct {
  Host           string   `yaml:"host,omitempty"`
  AutoApprove    *bool    `yaml:"auto_approve,omitempty"`
  ConsumerKey    string   `yaml:"consumer_key"`
  ConsumerSecret string   `yaml:"consumer_secret"`
  Token          string   `yaml:"token"`
  Secret         string   `yaml:"secret,omitempty"`
  RefreshToken   string   `yaml:"refresh_token,omitempty"`
  ExpireDate     int64    `yaml:"expire_date,omitempty"`
  ApiRequests    []string `yaml:"api_requests,omitempty"`
}

func (c *PlatformConfig) IsAutoApprove() bool {
  return c.AutoApprove == nil || *c.AutoApprove
}

type AggregatorConfig struct {
  AutoApprove       *bool    `yaml:"auto_approve,omitempty"`
  HarvestedServices []string `yaml:"harvested_services,omitempty"`
}

func (c *AggregatorConfig) IsAutoApprove() bool {
  return c.AutoApprove == nil || *c.AutoApprove
}

// Services normalizes "@virtual_identity_twitter" style references to platform names.
func (c *AggregatorConfig) Services() []string {
  if len(c.HarvestedServices) == 0 {
    return []string{models.PLATFORM_TWITTER}
  }
  var services []string
  for _, service := range c.HarvestedServices {
    name := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(service), "@"), sectionPrefix)
    if name != "" {
      services = append(services, name)
    }
  }
  return services
}

type Store struct {
  Path string
  mu   sync.Mutex
}

func NewStore(path string) *Store {
  return &Store{
    Path: path,
  }
}

func (s *Store) read() (document map[string]yaml.Node, err error) {
  document = map[string]yaml.Node{}
  data, err := os.ReadFile(s.Path)
  if errors.Is(err, os.ErrNotExist) {
    err = nil
    return
  }
  if err != nil {
    return
  }
  if err = yaml.Unmarshal(data, &document); err != nil {
    err = errors.New(fmt.Sprintf("config %v unreadable: %v", s.Path, err))
  }
  if document == nil {
    document = map[string]yaml.Node{}
  }
  return
}

// write replaces the file atomically so a crash never leaves half a document behind
func (s *Store) write(document map[string]yaml.Node) error {
  data, err := yaml.Marshal(document)
  if err != nil {
    return err
  }
  dir := filepath.Dir(s.Path)
  tmp, err := os.CreateTemp(dir, ".hydra-*.yml")
  if err != nil {
    return err
  }
  defer os.Remove(tmp.Name())
  if _, err = tmp.Write(data); err != nil {
    tmp.Close()
    return err
  }
  if err = tmp.Sync(); err != nil {
    tmp.Close()
    return err
  }
  if err = tmp.Close(); err != nil {
    return err
  }
  return os.Rename(tmp.Name(), s.Path)
}

func (s *Store) Platform(platform string) (*PlatformConfig, error) {
  s.mu.Lock()
  defer s.mu.Unlock()

  document, err := s.read()
  if err != nil {
    return nil, err
  }
  cfg := &PlatformConfig{}
  if node, ok := document[sectionPrefix+platform]; ok {
    if err := node.Decode(cfg); err != nil {
      return nil, err
    }
  }
  if cfg.ApiRequests == nil {
    cfg.ApiRequests = defaultRequests[platform]
  }
  return cfg, nil
}

func (s *Store) Aggregator() (*AggregatorConfig, error) {
  s.mu.Lock()
  defer s.mu.Unlock()

  document, err := s.read()
  if err != nil {
    return nil, err
  }
  cfg := &AggregatorConfig{}
  if node, ok := document[aggregatorSection]; ok {
    if err := node.Decode(cfg); err != nil {
      return nil, err
    }
  }
  return cfg, nil
}

func (s *Store) SavePlatform(platform string, cfg *PlatformConfig) error {
  return s.update(sectionPrefix+platform, cfg)
}

func (s *Store) SaveAggregator(cfg *AggregatorConfig) error {
  return s.update(aggregatorSection, cfg)
}

func (s *Store) update(section string, value interface{}) error {
  s.mu.Lock()
  defer s.mu.Unlock()

  document, err := s.read()
  if err != nil {
    return err
  }
  var node yaml.Node
  if err := node.Encode(value); err != nil {
    return err
  }
  document[section] = node
  return s.write(document)
}
