package tasks

import (
  "time"

  "github.com/hibiken/asynq"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/queue/asynq/jobs"
)

type Enqueuer interface {
  Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type SyncTask struct {
  Job         *jobs.Sync
  AnsqContext *common.AnsqClientContext
  Queue       Enqueuer
}

func NewSyncTask(ansqContext *common.AnsqClientContext) *SyncTask {
  return &SyncTask{
    AnsqContext: ansqContext,
    Queue:       ansqContext.Conn,
  }
}

func (t *SyncTask) options(timeout time.Duration) []asynq.Option {
  return []asynq.Option{
    asynq.Queue(config.ASYNQ_QUEUE_SYNC),
    asynq.MaxRetry(0),
    asynq.Timeout(timeout),
  }
}

// Platforms enqueues one job per platform; cool-down decides inside the job what actually runs.
func (t *SyncTask) Platforms(platforms []string) (err error) {
  for _, platform := range platforms {
    job, err := t.Job.Platform(platform, nil)
    if err != nil {
      return err
    }
    if _, err := t.Queue.Enqueue(job, t.options(10*time.Minute)...); err != nil {
      common.GetLogger().WithField("platform", platform).Errorln("sync job not enqueued", err)
    }
  }
  return
}

// Aggregator enqueues the unification of the already synced platform tables.
func (t *SyncTask) Aggregator() (err error) {
  job, err := t.Job.Aggregator(nil, true)
  if err != nil {
    return
  }
  _, err = t.Queue.Enqueue(job, t.options(30*time.Minute)...)
  return
}
