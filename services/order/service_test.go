package order

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"luxlife-studio/pkg/db/pagination"
	"luxlife-studio/pkg/task"
	"luxlife-studio/pkg/taskname"
	"luxlife-studio/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type enqueuerMock struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (m *enqueuerMock) Enqueue(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
	return &asynq.TaskInfo{Type: t.Type()}, nil
}

func newTestService(t *testing.T) (*Service, *enqueuerMock) {
	t.Helper()

	db := testutil.NewTestDB(t, &Order{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enq := &enqueuerMock{}
	return NewService(ServiceParams{DB: db, Node: node, Enqueuer: enq}), enq
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusPending, StatusQueuedValidation))
	require.True(t, CanTransition(StatusQueuedGeneration, StatusGeneratingBackground))
	require.True(t, CanTransition(StatusProcessing, StatusComplete))
	require.True(t, CanTransition(StatusGeneratingBackground, StatusFailed))

	require.False(t, CanTransition(StatusPending, StatusQueuedGeneration))
	require.False(t, CanTransition(StatusProcessing, StatusQueuedGeneration))
	require.False(t, CanTransition(StatusComplete, StatusFailed))
	require.False(t, CanTransition(StatusFailed, StatusPending))
	require.NotContains(t, NonTerminal(), StatusComplete)
}

func TestCreatePublishesCreatedTask(t *testing.T) {
	svc, enq := newTestService(t)

	o, err := svc.Create(context.Background(), CreateInput{
		UserID:     "user-1",
		SourcePath: "uploads/user-1/a/portrait.jpg",
		Scene:      "Rooftop Sunset",
		Tagline:    "Living my best life",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, "rooftop-sunset", o.SceneID)
	require.Equal(t, StagePending, o.Stages().Validation.State)

	require.Len(t, enq.tasks, 1)
	require.Equal(t, taskname.OrderCreated, enq.tasks[0].Type())
	p, err := task.DecodeOrderPayload(enq.tasks[0])
	require.NoError(t, err)
	require.Equal(t, o.ID, p.OrderID)

	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, "Rooftop Sunset", stored.SceneLabel())
}

func TestTransitionGuardsPrecondition(t *testing.T) {
	svc, enq := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, CreateInput{UserID: "user-1", SourcePath: "uploads/x.jpg"})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, []Status{StatusPending}, StatusQueuedValidation, func(o *Order) {
		o.Debited = true
	})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, []Status{StatusPending}, StatusQueuedValidation, nil)
	require.ErrorIs(t, err, ErrStatusConflict)

	updated, err := svc.Transition(ctx, o.ID, []Status{StatusQueuedValidation}, StatusQueuedGeneration, nil)
	require.NoError(t, err)
	require.True(t, updated.Debited)

	require.Len(t, enq.tasks, 2)
	require.Equal(t, taskname.OrderQueuedGeneration, enq.tasks[1].Type())
	p, err := task.DecodeOrderPayload(enq.tasks[1])
	require.NoError(t, err)
	require.Equal(t, "queued_validation", p.BeforeStatus)
	require.Equal(t, "queued_generation", p.AfterStatus)
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, CreateInput{UserID: "user-1", SourcePath: "uploads/x.jpg"})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, []Status{StatusPending}, StatusComplete, nil)
	require.ErrorIs(t, err, ErrStatusConflict)

	failed, err := svc.Transition(ctx, o.ID, NonTerminal(), StatusFailed, func(o *Order) {
		o.ErrorCode = "validation_missing_fields"
	})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, failed.Status)

	_, err = svc.Transition(ctx, o.ID, NonTerminal(), StatusFailed, nil)
	require.ErrorIs(t, err, ErrStatusConflict)
}

func TestUpdateKeepsStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, CreateInput{UserID: "user-1", SourcePath: "uploads/x.jpg"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, o.ID, func(o *Order) {
		o.Status = StatusComplete
		st := o.Stages()
		st.Generation.Prompt = "luxury"
		o.SetStages(st)
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, updated.Status)

	stored, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "luxury", stored.Stages().Generation.Prompt)
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateInput{UserID: "user-1", SourcePath: "uploads/x.jpg"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateInput{UserID: "user-2", SourcePath: "uploads/y.jpg"})
	require.NoError(t, err)

	page, info, err := svc.List(ctx, "user-1", pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextCursor)

	_, _, err = svc.List(ctx, "", pagination.Pagination{})
	require.Error(t, err)
}
