package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"luxlife-studio/pkg/db/option"
	"luxlife-studio/pkg/db/pagination"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/repository"

	"gorm.io/gorm"
)

// ErrStatusConflict means the order is not in any of the expected states.
var ErrStatusConflict = errors.New("order status does not match expected state")

type Store struct {
	db     *gorm.DB
	orders repository.Repository[Order]
	now    func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		orders: repository.ProvideStore[Order](db),
		now:    time.Now,
	}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	return s.orders.Create(ctx, o)
}

func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.FindOne(ctx, &Order{ID: id})
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errutil.NotFound(fmt.Sprintf("order %s not found", id))
	}
	return o, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, p pagination.Pagination) ([]*Order, *pagination.PageInfo, error) {
	orders, err := s.orders.Find(ctx, &Order{UserID: userID}, option.ApplyPagination(p))
	if err != nil {
		return nil, nil, err
	}

	orders, info := pagination.Trim(orders, p.Limit, func(o *Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339Nano), ID: o.ID}
	})
	return orders, info, nil
}

// ListStale returns up to limit orders in one of statuses that were last
// written before the cutoff, oldest first.
func (s *Store) ListStale(ctx context.Context, statuses []Status, before time.Time, limit int) ([]*Order, error) {
	return s.orders.Find(ctx, &Order{},
		option.ApplyOperator(option.Condition{Field: "status", Operator: option.IN, Value: statuses}),
		option.ApplyOperator(option.Condition{Field: "updated_at", Operator: option.LT, Value: before}),
		option.WithSortBy(option.QuerySortBy{SortBy: "updated_at"}),
		func(db *gorm.DB) *gorm.DB { return db.Limit(limit) },
	)
}

// Transition moves the order to `to` if its current status is one of from,
// applying fn to the locked record before the whole record is saved. It
// returns the previous status alongside the saved order.
func (s *Store) Transition(ctx context.Context, id string, from []Status, to Status, fn func(*Order)) (*Order, Status, error) {
	var (
		out    *Order
		before Status
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}

		before = o.Status
		if !slices.Contains(from, o.Status) {
			return fmt.Errorf("%w: order %s is %s, want one of %v", ErrStatusConflict, id, o.Status, from)
		}
		if o.Status != to && !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s is not a lifecycle step", ErrStatusConflict, o.Status, to)
		}

		if fn != nil {
			fn(o)
		}
		o.Status = to
		o.UpdatedAt = s.now()

		if err := s.orders.WithTrx(tx).Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, before, err
	}

	return out, before, nil
}

// Update applies fn to the locked record without changing its status.
func (s *Store) Update(ctx context.Context, id string, fn func(*Order)) (*Order, error) {
	var out *Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}

		status := o.Status
		fn(o)
		o.Status = status
		o.UpdatedAt = s.now()

		if err := s.orders.WithTrx(tx).Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func (s *Store) lock(ctx context.Context, tx *gorm.DB, id string) (*Order, error) {
	o, err := s.orders.WithTrx(tx).FindOne(ctx, &Order{ID: id}, option.WithLockingUpdate())
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errutil.NotFound(fmt.Sprintf("order %s not found", id))
	}
	return o, nil
}
