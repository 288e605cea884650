package credit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"luxlife-studio/pkg/db/option"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUserProfileMissing = &errutil.CreditError{
		Code:    "user_profile_missing",
		Message: "User profile missing credits configuration.",
	}
	ErrInsufficientCredits = &errutil.CreditError{
		Code:    "insufficient_credits",
		Message: "Not enough credits to start generation. Purchase more to continue.",
	}
	// ErrAlreadyApplied is returned by Debit when the reference was debited
	// before. The balance is left untouched.
	ErrAlreadyApplied = errors.New("credit entry already applied for reference")
	// ErrNotDebited is returned when a refund names a reference that was
	// never debited.
	ErrNotDebited = errors.New("no debit recorded for reference")
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	balance repository.Repository[Balance]
	ledger  repository.Repository[LedgerEntry]

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		balance: repository.ProvideStore[Balance](p.DB),
		ledger:  repository.ProvideStore[LedgerEntry](p.DB),

		now: time.Now,
	}
}

// Debit takes one credit from userID for the order referenceID.
func (s *Service) Debit(ctx context.Context, userID, referenceID string) error {
	log := zap.L().With(traceFields(ctx)...).With(zap.String("user_id", userID), zap.String("reference_id", referenceID))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance == nil {
			return ErrUserProfileMissing
		}

		applied, err := s.applied(ctx, tx, userID, referenceID, EntryDebit)
		if err != nil {
			return err
		}
		if applied {
			return ErrAlreadyApplied
		}

		if balance.Credits <= 0 {
			return ErrInsufficientCredits
		}

		return s.apply(ctx, tx, balance, EntryDebit, -1, referenceID, "Generation order debit", nil)
	})
	if err != nil {
		log.Warn("credit debit rejected", zap.Error(err))
		return err
	}

	log.Info("credit debited")
	return nil
}

// Credit returns one credit to userID for referenceID. It is best-effort:
// failures are logged and reported only through the boolean, which is true
// when the refund is recorded (now or by an earlier call). A reference with
// no debit is never refunded.
func (s *Service) Credit(ctx context.Context, userID, referenceID string) bool {
	log := zap.L().With(traceFields(ctx)...).With(zap.String("user_id", userID), zap.String("reference_id", referenceID))

	var alreadyApplied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance == nil {
			return ErrUserProfileMissing
		}

		applied, err := s.applied(ctx, tx, userID, referenceID, EntryCredit)
		if err != nil {
			return err
		}
		if applied {
			alreadyApplied = true
			return nil
		}

		debited, err := s.applied(ctx, tx, userID, referenceID, EntryDebit)
		if err != nil {
			return err
		}
		if !debited {
			return ErrNotDebited
		}

		return s.apply(ctx, tx, balance, EntryCredit, 1, referenceID, "Generation order refund", nil)
	})
	if err != nil {
		log.Error("credit refund failed", zap.Error(err))
		return false
	}

	if alreadyApplied {
		log.Info("credit refund already applied")
	} else {
		log.Info("credit refunded")
	}
	return true
}

// Grant adds amount credits to userID, creating the profile when missing.
func (s *Service) Grant(ctx context.Context, userID string, amount int64, reason string) (*Balance, error) {
	if amount <= 0 {
		return nil, errutil.BadRequest("amount must be > 0 for GRANT")
	}

	var out *Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}

		if balance == nil {
			now := s.now()
			balance = &Balance{
				ID:        s.node.Generate().String(),
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.balance.WithTrx(tx).Create(ctx, balance); err != nil {
				return err
			}
		}

		meta := map[string]any{"reason": reason}
		ref := "grant:" + s.node.Generate().String()
		if err := s.apply(ctx, tx, balance, EntryGrant, amount, ref, reason, meta); err != nil {
			return err
		}

		out, err = s.balance.WithTrx(tx).FindOne(ctx, &Balance{UserID: userID})
		return err
	})
	if err != nil {
		zap.L().With(traceFields(ctx)...).Error("failed to grant credits", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return out, nil
}

// Balance returns nil, nil when the user has no profile.
func (s *Service) Balance(ctx context.Context, userID string) (*Balance, error) {
	return s.balance.FindOne(ctx, &Balance{UserID: userID})
}

func (s *Service) Entries(ctx context.Context, userID string) ([]*LedgerEntry, error) {
	return s.ledger.Find(ctx, &LedgerEntry{UserID: userID}, chainOrder(false))
}

// VerifyChain recomputes every entry hash for userID and checks the links.
func (s *Service) VerifyChain(ctx context.Context, userID string) (bool, error) {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		zap.L().With(traceFields(ctx)...).Error("failed to query Find entries", zap.Error(err))
		return false, err
	}

	lastHash := genesisHash
	for _, entry := range entries {
		if entry.Hash != entry.GenerateHash() || entry.PreviousHash != lastHash {
			return false, nil
		}
		lastHash = entry.Hash
	}

	return true, nil
}

func (s *Service) lockBalance(ctx context.Context, tx *gorm.DB, userID string) (*Balance, error) {
	return s.balance.WithTrx(tx).FindOne(ctx, &Balance{UserID: userID}, option.WithLockingUpdate())
}

func (s *Service) applied(ctx context.Context, tx *gorm.DB, userID, referenceID, entryType string) (bool, error) {
	count, err := s.ledger.WithTrx(tx).Count(ctx, &LedgerEntry{UserID: userID, ReferenceID: referenceID, Type: entryType})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// apply moves the balance by delta and appends the matching chained entry.
// It must run inside the transaction holding the balance lock.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, balance *Balance, entryType string, delta int64, referenceID, description string, meta map[string]any) error {
	last, err := s.ledger.WithTrx(tx).FindOne(ctx, &LedgerEntry{UserID: balance.UserID}, chainOrder(true), option.WithLockingUpdate())
	if err != nil {
		return err
	}

	previousHash := genesisHash
	if last != nil {
		previousHash = last.Hash
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	updates := map[string]any{
		"credits":    gorm.Expr("credits + ?", delta),
		"updated_at": now,
	}
	if err := s.balance.WithTrx(tx).Update(ctx, balance.ID, &updates); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}

	var metadata datatypes.JSON
	if len(meta) > 0 {
		b, _ := json.Marshal(meta)
		metadata = datatypes.JSON(b)
	}

	entry := &LedgerEntry{
		ID:           s.node.Generate().String(),
		CreatedAt:    now,
		UserID:       balance.UserID,
		ReferenceID:  referenceID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: balance.Credits + delta,
		Description:  description,
		PreviousHash: previousHash,
		Metadata:     metadata,
	}
	entry.Hash = entry.GenerateHash()

	if err := s.ledger.WithTrx(tx).Create(ctx, entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

func chainOrder(desc bool) option.QueryOption {
	order := "asc"
	if desc {
		order = "desc"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at " + order).Order("id " + order)
	}
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
