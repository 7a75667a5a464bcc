package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"factura-scanner.backend/internal/domain/entities"
)

type sweepRepoStub struct {
	stuck       []*entities.DocumentProcessing
	listErr     error
	updateErr   error
	updateCalls int
	lastCutoff  time.Time
	closedIDs   []uuid.UUID
	lastUpdate  *entities.DocumentStatusUpdate
}

func (s *sweepRepoStub) Create(_ context.Context, _ *entities.DocumentProcessing) error {
	return nil
}

func (s *sweepRepoStub) GetByMessageID(_ context.Context, _ string) (*entities.DocumentProcessing, error) {
	return nil, nil
}

func (s *sweepRepoStub) UpdateStatus(_ context.Context, id uuid.UUID, update *entities.DocumentStatusUpdate) error {
	s.updateCalls++
	s.closedIDs = append(s.closedIDs, id)
	s.lastUpdate = update
	return s.updateErr
}

func (s *sweepRepoStub) ListStuck(_ context.Context, olderThan time.Time, _ int) ([]*entities.DocumentProcessing, error) {
	s.lastCutoff = olderThan
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.stuck, nil
}

func TestSweep_NoStuckDocuments(t *testing.T) {
	repo := &sweepRepoStub{}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	job.sweep(context.Background())
	require.Equal(t, 0, repo.updateCalls)
}

func TestSweep_ClosesStuckDocuments(t *testing.T) {
	id1 := uuid.New()
	id2 := uuid.New()
	repo := &sweepRepoStub{stuck: []*entities.DocumentProcessing{{ID: id1}, {ID: id2}}}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	before := time.Now()
	job.sweep(context.Background())

	require.Equal(t, 2, repo.updateCalls)
	require.ElementsMatch(t, []uuid.UUID{id1, id2}, repo.closedIDs)
	require.Equal(t, entities.DocumentStatusError, repo.lastUpdate.Status)
	require.Equal(t, "STUCK", repo.lastUpdate.ErrorCode)
	require.True(t, repo.lastCutoff.Before(before))
}

func TestSweep_ListError(t *testing.T) {
	repo := &sweepRepoStub{listErr: errors.New("db down")}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	job.sweep(context.Background())
	require.Equal(t, 0, repo.updateCalls)
}

func TestSweep_UpdateErrorDoesNotAbortBatch(t *testing.T) {
	docs := []*entities.DocumentProcessing{{ID: uuid.New()}, {ID: uuid.New()}}
	repo := &sweepRepoStub{stuck: docs, updateErr: errors.New("update failed")}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	job.sweep(context.Background())
	require.Equal(t, 2, repo.updateCalls)
}

func TestSweep_StopsByContext(t *testing.T) {
	repo := &sweepRepoStub{}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestSweep_StopsByStopChannel(t *testing.T) {
	repo := &sweepRepoStub{}
	job := &StaleDocumentSweep{repo: repo, interval: time.Millisecond, stuckAfter: time.Hour, stop: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	job.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on Stop()")
	}
}
