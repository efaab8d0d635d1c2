package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/service"
)

func TestJobQueueWorker_ProcessesEnqueuedJob(t *testing.T) {
	batch := newBatch(passLoader{}, 1)
	job, err := batch.CreateJob(context.Background(), domain.TaskOCR, []string{"a", "b"}, domain.TaskOptions{})
	require.NoError(t, err)

	worker := service.NewJobQueueWorker(batch, service.JobQueueConfig{Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(stopped)
	}()

	require.NoError(t, worker.Enqueue(job.ID, factoryOf(echoRecord)))

	assert.Eventually(t, func() bool {
		got, err := batch.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == domain.StatusCompleted
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-stopped
}

func TestJobQueueWorker_EnqueueWhenFull(t *testing.T) {
	worker := service.NewJobQueueWorker(newBatch(passLoader{}, 1), service.JobQueueConfig{Capacity: 1})
	job, err := newBatch(passLoader{}, 1).CreateJob(context.Background(), domain.TaskOCR, []string{"a"}, domain.TaskOptions{})
	require.NoError(t, err)

	require.NoError(t, worker.Enqueue(job.ID, factoryOf(echoRecord)))
	err = worker.Enqueue(job.ID, factoryOf(echoRecord))
	assert.True(t, errors.Is(err, domain.ErrQueueFull))
}
