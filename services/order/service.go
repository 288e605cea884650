package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"luxlife-studio/pkg/db/pagination"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/task"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateInput struct {
	UserID     string `json:"uid"`
	Email      string `json:"email"`
	SourcePath string `json:"sourcePath"`
	SceneID    string `json:"sceneId"`
	Scene      string `json:"scene"`
	Tagline    string `json:"tagline"`
	Prompt     string `json:"prompt"`
}

// Service owns order records and publishes the change notifications that
// drive the workflow.
type Service struct {
	store    *Store
	node     *snowflake.Node
	enqueuer task.Enqueuer
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Enqueuer task.Enqueuer
}

func NewService(p ServiceParams) *Service {
	return &Service{
		store:    NewStore(p.DB),
		node:     p.Node,
		enqueuer: p.Enqueuer,
	}
}

// Create stores a pending order and publishes its creation notification.
// Required fields are checked by the workflow, not here, so that a bad
// order still ends up failed with a recorded reason.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	now := time.Now()
	o := &Order{
		ID:         s.node.Generate().String(),
		UserID:     strings.TrimSpace(in.UserID),
		Email:      strings.TrimSpace(in.Email),
		SourcePath: strings.TrimSpace(in.SourcePath),
		SceneID:    strings.TrimSpace(in.SceneID),
		Scene:      strings.TrimSpace(in.Scene),
		Tagline:    in.Tagline,
		Prompt:     in.Prompt,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if o.SceneID == "" && o.Scene != "" {
		o.SceneID = slug.Make(o.Scene)
	}
	o.SetStages(NewPipeline(now))

	if err := s.store.Create(ctx, o); err != nil {
		zap.L().Error("failed to create order", zap.String("user_id", o.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.PublishCreated(ctx, o.ID); err != nil && !errors.Is(err, task.ErrAlreadyQueued) {
		return o, err
	}

	zap.L().Info("order created", zap.String("order_id", o.ID), zap.String("user_id", o.UserID), zap.String("scene_id", o.SceneID))
	return o, nil
}

// PublishCreated (re)publishes the creation notification. Handlers ignore it
// unless the order is still pending. task.ErrAlreadyQueued means the
// notification is already waiting.
func (s *Service) PublishCreated(ctx context.Context, orderID string) error {
	t, opts, err := task.NewOrderCreatedTask(orderID)
	if err != nil {
		return err
	}
	if _, err := s.enqueuer.Enqueue(ctx, t, opts...); err != nil {
		if !errors.Is(err, task.ErrAlreadyQueued) {
			zap.L().Error("failed to publish order created", zap.String("order_id", orderID), zap.Error(err))
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string, p pagination.Pagination) ([]*Order, *pagination.PageInfo, error) {
	if userID == "" {
		return nil, nil, errutil.BadRequest("uid is required")
	}
	return s.store.ListByUser(ctx, userID, p)
}

// Transition changes status under the store's precondition check and
// publishes an update notification when the order enters a state that has a
// handler.
func (s *Service) Transition(ctx context.Context, id string, from []Status, to Status, fn func(*Order)) (*Order, error) {
	o, before, err := s.store.Transition(ctx, id, from, to, fn)
	if err != nil {
		return nil, err
	}

	if to == StatusQueuedGeneration {
		if err := s.PublishQueuedGeneration(ctx, id, before); err != nil && !errors.Is(err, task.ErrAlreadyQueued) {
			return o, err
		}
	}

	return o, nil
}

// PublishQueuedGeneration publishes the update notification for an order
// that entered queued_generation from before.
func (s *Service) PublishQueuedGeneration(ctx context.Context, id string, before Status) error {
	t, opts, err := task.NewOrderQueuedGenerationTask(id, string(before), string(StatusQueuedGeneration))
	if err != nil {
		return err
	}
	if _, err := s.enqueuer.Enqueue(ctx, t, opts...); err != nil {
		if !errors.Is(err, task.ErrAlreadyQueued) {
			zap.L().Error("failed to publish order update", zap.String("order_id", id), zap.String("status", string(StatusQueuedGeneration)), zap.Error(err))
		}
		return err
	}
	return nil
}

// Stale lists orders waiting in statuses since before.
func (s *Service) Stale(ctx context.Context, statuses []Status, before time.Time, limit int) ([]*Order, error) {
	return s.store.ListStale(ctx, statuses, before, limit)
}

func (s *Service) Update(ctx context.Context, id string, fn func(*Order)) (*Order, error) {
	return s.store.Update(ctx, id, fn)
}
