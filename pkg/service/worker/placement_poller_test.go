package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"github.com/partnerflow/partnerflow/pkg/service/worker"
)

type fakeProcessor struct {
	mu    sync.Mutex
	calls []types.JobType
	errs  map[types.JobType]error
}

func (f *fakeProcessor) ProcessNewPlacements(ctx context.Context, jobType types.JobType) ([]*model.Automation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, jobType)
	if err := f.errs[jobType]; err != nil {
		return nil, err
	}
	return []*model.Automation{{Type: jobType}}, nil
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRunOnce(t *testing.T) {
	t.Run("runs every job type in order", func(t *testing.T) {
		proc := &fakeProcessor{}
		p := worker.NewPlacementPoller(proc, time.Hour)

		gt.NoError(t, p.RunOnce(context.Background())).Required()
		gt.Value(t, proc.calls).Equal([]types.JobType{types.JobTypeOnboarding, types.JobTypeOffboarding})
	})

	t.Run("a failing job type does not stop the others", func(t *testing.T) {
		errFetch := errors.New("allocations down")
		proc := &fakeProcessor{errs: map[types.JobType]error{types.JobTypeOnboarding: errFetch}}
		p := worker.NewPlacementPoller(proc, time.Hour)

		err := p.RunOnce(context.Background())
		gt.Error(t, err).Is(errFetch)
		gt.Value(t, proc.calls).Equal([]types.JobType{types.JobTypeOnboarding, types.JobTypeOffboarding})
	})

	t.Run("job types can be limited", func(t *testing.T) {
		proc := &fakeProcessor{}
		p := worker.NewPlacementPoller(proc, time.Hour, worker.WithJobTypes(types.JobTypeOffboarding))

		gt.NoError(t, p.RunOnce(context.Background())).Required()
		gt.Value(t, proc.calls).Equal([]types.JobType{types.JobTypeOffboarding})
	})

	t.Run("cancelled context stops the poll", func(t *testing.T) {
		proc := &fakeProcessor{}
		p := worker.NewPlacementPoller(proc, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gt.Error(t, p.RunOnce(ctx)).Is(context.Canceled)
		gt.Value(t, proc.callCount()).Equal(0)
	})
}

func TestPlacementPollerSchedule(t *testing.T) {
	t.Run("invalid interval", func(t *testing.T) {
		p := worker.NewPlacementPoller(&fakeProcessor{}, 0)
		gt.Error(t, p.Start(context.Background()))
	})

	t.Run("polls on the interval until stopped", func(t *testing.T) {
		proc := &fakeProcessor{}
		p := worker.NewPlacementPoller(proc, time.Second)
		gt.NoError(t, p.Start(context.Background())).Required()

		deadline := time.Now().Add(5 * time.Second)
		for proc.callCount() == 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
		p.Stop()

		gt.Bool(t, proc.callCount() > 0).True()
		stopped := proc.callCount()
		time.Sleep(1500 * time.Millisecond)
		gt.Value(t, proc.callCount()).Equal(stopped)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		p := worker.NewPlacementPoller(&fakeProcessor{}, time.Hour)
		gt.NoError(t, p.Start(context.Background())).Required()
		defer p.Stop()
		gt.Error(t, p.Start(context.Background()))
	})
}
