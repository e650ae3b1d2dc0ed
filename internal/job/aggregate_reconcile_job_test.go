package job

import (
	"Larder/internal/pkg/consts"
	"Larder/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeReconcileService struct {
	calls []string
	err   error
}

func (f *fakeReconcileService) ReconcileRecipes(context.Context) (*service.ReconcileReport, error) {
	f.calls = append(f.calls, "recipes")
	return &service.ReconcileReport{Checked: 3, Repaired: 1}, f.err
}

func (f *fakeReconcileService) ReconcileReviews(context.Context) (*service.ReconcileReport, error) {
	f.calls = append(f.calls, "reviews")
	return &service.ReconcileReport{}, nil
}

func (f *fakeReconcileService) ReconcileUsers(context.Context) (*service.ReconcileReport, error) {
	f.calls = append(f.calls, "users")
	return &service.ReconcileReport{}, nil
}

type fakeLocker struct {
	held     bool
	err      error
	key      string
	unlocked bool
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	l.key = key
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *fakeLocker) UnLock(context.Context, string, interface{}) {
	l.unlocked = true
}

func TestAggregateReconcileJobRunsAllTargets(t *testing.T) {
	svc := &fakeReconcileService{}
	locker := &fakeLocker{}

	NewAggregateReconcileJob(svc, locker).Run()

	assert.Equal(t, []string{"recipes", "reviews", "users"}, svc.calls)
	assert.Equal(t, consts.AggregateReconcileLock, locker.key)
	assert.True(t, locker.unlocked)
}

func TestAggregateReconcileJobContinuesAfterFailure(t *testing.T) {
	svc := &fakeReconcileService{err: errors.New("boom")}

	NewAggregateReconcileJob(svc, nil).Run()

	assert.Equal(t, []string{"recipes", "reviews", "users"}, svc.calls)
}

func TestAggregateReconcileJobSkipsWhenLocked(t *testing.T) {
	svc := &fakeReconcileService{}

	NewAggregateReconcileJob(svc, &fakeLocker{held: true}).Run()
	NewAggregateReconcileJob(svc, &fakeLocker{err: errors.New("redis down")}).Run()

	assert.Empty(t, svc.calls)
}
