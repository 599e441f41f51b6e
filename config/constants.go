package config

const (
  LOCKS_SYNC_PLATFORM   = "hydra:locks:sync:%v"
  LOCKS_SYNC_AGGREGATOR = "hydra:locks:sync:aggregator"
  LOCKS_APPROVAL_MIRROR = "hydra:locks:approval:%v:%v"
)

const (
  REDIS_KEY_AUTH_SESSION = "hydra:auth:session:%v:%v"
)

const (
  NATS_APPROVAL_CHANGED = "hydra.approval.changed"
  NATS_APPROVAL_GROUP   = "hydra_approvals"
)

const (
  ASYNQ_QUEUE_SYNC           = "hydra_sync"
  ASYNQ_JOBS_SYNC_PLATFORM   = "hydra:sync:platform"
  ASYNQ_JOBS_SYNC_AGGREGATOR = "hydra:sync:aggregator"
)

const (
  TWITTER_HOST   = "api.twitter.com"
  FACEBOOK_HOST  = "graph.facebook.com"
  INSTAGRAM_HOST = "api.instagram.com"
  YOUTUBE_HOST   = "www.googleapis.com"
)

const (
  FLATTEN_GLUE          = "_"
  TWITTER_PAGE_COUNT    = 200
  YOUTUBE_EXPIRE_MARGIN = 10
  DEFAULT_CONFIG_FILE   = "hydra.yml"
  DEFAULT_SYNC_SCHEDULE = "@every 1m"
  DEFAULT_HTTP_TIMEOUT  = 30
)
