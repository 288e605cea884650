package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/lock"
	"luxlife-studio/pkg/task"
	"luxlife-studio/pkg/taskname"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/order"
	"luxlife-studio/services/testutil"
	"luxlife-studio/services/workflow/mocks"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const (
	testUser   = "user-1"
	testSource = "uploads/user-1/portrait.jpg"
	testEmail  = "ava@example.com"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	// deliver, when set, runs every published task before Enqueue returns,
	// like a worker that picks it up immediately.
	deliver func(*asynq.Task)
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, t)
	deliver := f.deliver
	f.mu.Unlock()

	if deliver != nil {
		deliver(t)
	}
	return &asynq.TaskInfo{Type: t.Type()}, nil
}

// last returns the most recent task of typ published for orderID.
func (f *fakeEnqueuer) last(t *testing.T, typ, orderID string) *asynq.Task {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.tasks) - 1; i >= 0; i-- {
		if f.tasks[i].Type() != typ {
			continue
		}
		p, err := task.DecodeOrderPayload(f.tasks[i])
		require.NoError(t, err)
		if p.OrderID == orderID {
			return f.tasks[i]
		}
	}
	t.Fatalf("no %s task published for order %s", typ, orderID)
	return nil
}

func (f *fakeEnqueuer) count(typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if t.Type() == typ {
			n++
		}
	}
	return n
}

type fakeFlags struct {
	disabled map[string]bool
}

func (f *fakeFlags) Enabled(_ context.Context, feature, _ string) bool {
	return !f.disabled[feature]
}

type harness struct {
	t   *testing.T
	ctx context.Context

	engine   *Engine
	orders   *order.Service
	ledger   *credit.Service
	enqueuer *fakeEnqueuer
	locker   lock.Locker
	cfg      *config.Config
	flags    *fakeFlags

	storage    *mocks.MockStorage
	background *mocks.MockBackgroundGenerator
	voice      *mocks.MockVoiceSynthesizer
	animator   *mocks.MockAnimator
	composer   *mocks.MockComposer
	notifier   *mocks.MockNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewTestDB(t, &order.Order{}, &credit.Balance{}, &credit.LedgerEntry{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Replicate.APIToken = "r8_test"
	cfg.Replicate.ModelVersion = "sdxl-v1"
	cfg.DID.APIKey = "did-key"
	cfg.ApplyDefaults()

	ctrl := gomock.NewController(t)
	h := &harness{
		t:          t,
		ctx:        context.Background(),
		enqueuer:   &fakeEnqueuer{},
		locker:     lock.NewLocker(rdb),
		cfg:        cfg,
		flags:      &fakeFlags{disabled: map[string]bool{}},
		ledger:     credit.NewService(credit.ServiceParams{DB: db, Node: node}),
		storage:    mocks.NewMockStorage(ctrl),
		background: mocks.NewMockBackgroundGenerator(ctrl),
		voice:      mocks.NewMockVoiceSynthesizer(ctrl),
		animator:   mocks.NewMockAnimator(ctrl),
		composer:   mocks.NewMockComposer(ctrl),
		notifier:   mocks.NewMockNotifier(ctrl),
	}
	h.orders = order.NewService(order.ServiceParams{DB: db, Node: node, Enqueuer: h.enqueuer})
	h.background.EXPECT().ModelVersion().Return(cfg.Replicate.ModelVersion).AnyTimes()

	h.engine = New(Params{
		Config:     cfg,
		Orders:     h.orders,
		Ledger:     h.ledger,
		Storage:    h.storage,
		Background: h.background,
		Voice:      h.voice,
		Animator:   h.animator,
		Composer:   h.composer,
		Notifier:   h.notifier,
		Locker:     h.locker,
		Flags:      h.flags,
		Tracer:     noop.NewTracerProvider(),
	})
	h.engine.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) grant(n int64) {
	h.t.Helper()
	_, err := h.ledger.Grant(h.ctx, testUser, n, "test top-up")
	require.NoError(h.t, err)
}

func (h *harness) credits() int64 {
	h.t.Helper()
	b, err := h.ledger.Balance(h.ctx, testUser)
	require.NoError(h.t, err)
	require.NotNil(h.t, b)
	return b.Credits
}

func (h *harness) entries(typ string) int {
	h.t.Helper()
	entries, err := h.ledger.Entries(h.ctx, testUser)
	require.NoError(h.t, err)
	n := 0
	for _, e := range entries {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (h *harness) create(in order.CreateInput) *order.Order {
	h.t.Helper()
	o, err := h.orders.Create(h.ctx, in)
	require.NoError(h.t, err)
	return o
}

func (h *harness) createDefault() *order.Order {
	return h.create(order.CreateInput{
		UserID:     testUser,
		Email:      testEmail,
		SourcePath: testSource,
		Scene:      "Rooftop Sunset",
		Tagline:    "Living my best life",
	})
}

func (h *harness) runCreated(id string) {
	h.t.Helper()
	require.NoError(h.t, h.engine.HandleOrderCreated(h.ctx, h.enqueuer.last(h.t, taskname.OrderCreated, id)))
}

func (h *harness) runGeneration(id string) {
	h.t.Helper()
	require.NoError(h.t, h.engine.HandleQueuedGeneration(h.ctx, h.enqueuer.last(h.t, taskname.OrderQueuedGeneration, id)))
}

func (h *harness) get(id string) *order.Order {
	h.t.Helper()
	o, err := h.orders.Get(h.ctx, id)
	require.NoError(h.t, err)
	return o
}

// validated creates an order and runs it through validation with the
// source present.
func (h *harness) validated() *order.Order {
	h.t.Helper()
	o := h.createDefault()
	h.storage.EXPECT().Exists(gomock.Any(), testSource).Return(true, nil)
	h.runCreated(o.ID)
	require.Equal(h.t, order.StatusQueuedGeneration, h.get(o.ID).Status)
	return o
}
