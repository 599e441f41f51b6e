package app

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "hydra.local/social-aggregator/aggregator"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/credentials"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories"
  "hydra.local/social-aggregator/repositories/platforms"
  "hydra.local/social-aggregator/repositories/platforms/facebook"
  "hydra.local/social-aggregator/repositories/platforms/instagram"
  "hydra.local/social-aggregator/repositories/platforms/twitter"
  "hydra.local/social-aggregator/repositories/platforms/youtube"
  "hydra.local/social-aggregator/syncer"
)

var Factories = map[string]credentials.Factory{
  models.PLATFORM_TWITTER: func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return twitter.New(c, o)
  },
  models.PLATFORM_FACEBOOK: func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return facebook.New(c, o)
  },
  models.PLATFORM_INSTAGRAM: func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return instagram.New(c, o)
  },
  models.PLATFORM_YOUTUBE: func(c platforms.Credentials, o platforms.Options) platforms.Client {
    return youtube.New(c, o)
  },
}

type Options struct {
  Db         *gorm.DB
  ConfigPath string
  Locker     common.Locker
  // Events receives platform approval changes; the unified store is updated in process when nil
  Events   syncer.EventSink
  Platform platforms.Options
}

type App struct {
  Db         *gorm.DB
  Store      *credentials.Store
  Managers   map[string]*credentials.Manager
  Services   map[string]*syncer.PlatformService
  Requests   *repositories.RequestsRepository
  Unified    *repositories.UnifiedRepository
  Aggregator *aggregator.Aggregator
  Mirror     *aggregator.ApprovalMirror
}

func ConfigPath() string {
  return common.GetEnvStringOr("HYDRA_CONFIG", config.DEFAULT_CONFIG_FILE)
}

// New loads credentials for every platform and wires services and the aggregator around them.
func New(ctx context.Context, options Options) (*App, error) {
  if options.Db == nil {
    return nil, errors.New("database is required")
  }
  if options.ConfigPath == "" {
    options.ConfigPath = ConfigPath()
  }
  if options.Locker == nil {
    options.Locker = &common.LocalLocker{}
  }

  a := &App{
    Db:       options.Db,
    Store:    credentials.NewStore(options.ConfigPath),
    Managers: map[string]*credentials.Manager{},
    Services: map[string]*syncer.PlatformService{},
    Requests: &repositories.RequestsRepository{
      Db:       options.Db,
      Platform: models.PLATFORM_TWITTER,
    },
    Unified: &repositories.UnifiedRepository{
      Db: options.Db,
    },
  }
  a.Mirror = &aggregator.ApprovalMirror{
    Unified: a.Unified,
  }
  events := options.Events
  if events == nil {
    events = a.Mirror
  }

  for _, platform := range models.Platforms {
    manager := credentials.NewManager(platform, a.Store, Factories[platform], options.Platform)
    if err := manager.Load(ctx); err != nil {
      return nil, err
    }
    a.Managers[platform] = manager

    var requests syncer.RequestCatalog = a.Requests
    if platform != models.PLATFORM_TWITTER {
      requests = syncer.NewStaticRequests(platform, manager.Config().ApiRequests)
    }
    a.Services[platform] = &syncer.PlatformService{
      Platform: platform,
      Records: &repositories.RecordsRepository{
        Db:       options.Db,
        Platform: platform,
      },
      Requests:    requests,
      Credentials: manager,
      Locker:      options.Locker,
      Events:      events,
    }
  }

  cfg, err := a.Store.Aggregator()
  if err != nil {
    return nil, err
  }
  a.Aggregator = aggregator.NewAggregator(a.Unified, cfg.IsAutoApprove())
  a.Aggregator.Locker = options.Locker
  for _, name := range cfg.Services() {
    service, ok := a.Services[name]
    if !ok {
      return nil, &common.ConfigurationError{
        Platform: "aggregator",
        Reason:   fmt.Sprintf("unknown harvested service %v", name),
      }
    }
    a.Aggregator.Harvest(name, service)
  }
  a.Mirror.Converter = a.Aggregator.Converter
  return a, nil
}

func (a *App) Service(platform string) (*syncer.PlatformService, error) {
  service, ok := a.Services[platform]
  if !ok {
    return nil, &common.NotFoundError{Entity: "platform", Key: platform}
  }
  return service, nil
}
