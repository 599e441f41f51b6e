package tasks

import (
  "testing"

  "github.com/hibiken/asynq"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
  "github.com/tidwall/gjson"

  "hydra.local/social-aggregator/config"
)

type recordingQueue struct {
  tasks []*asynq.Task
}

func (q *recordingQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
  q.tasks = append(q.tasks, task)
  return &asynq.TaskInfo{}, nil
}

func TestSyncTask(t *testing.T) {
  queue := &recordingQueue{}
  task := &SyncTask{Queue: queue}

  require.NoError(t, task.Platforms([]string{"twitter", "youtube"}))
  require.NoError(t, task.Aggregator())

  require.Len(t, queue.tasks, 3)
  assert.Equal(t, config.ASYNQ_JOBS_SYNC_PLATFORM, queue.tasks[0].Type())
  assert.Equal(t, "youtube", gjson.GetBytes(queue.tasks[1].Payload(), "platform").String())
  assert.Equal(t, config.ASYNQ_JOBS_SYNC_AGGREGATOR, queue.tasks[2].Type())
  assert.True(t, gjson.GetBytes(queue.tasks[2].Payload(), "unify_only").Bool())
}
