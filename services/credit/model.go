package credit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	EntryDebit  = "DEBIT"
	EntryCredit = "CREDIT"
	EntryGrant  = "GRANT"

	genesisHash = "GENESIS"
)

// Balance is a user's credit profile. A missing row means the user has no
// credits configuration at all.
type Balance struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	Credits   int64     `gorm:"column:credits" json:"credits"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Balance) TableName() string { return "credit_balances" }

type LedgerEntry struct {
	ID           string         `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"column:created_at;index" json:"created_at"`
	UserID       string         `gorm:"column:user_id;uniqueIndex:idx_credit_entry_ref,priority:1" json:"user_id"`
	ReferenceID  string         `gorm:"column:reference_id;uniqueIndex:idx_credit_entry_ref,priority:2" json:"reference_id"`
	Type         string         `gorm:"column:type;uniqueIndex:idx_credit_entry_ref,priority:3" json:"type"`
	Amount       int64          `gorm:"column:amount" json:"amount"`
	BalanceAfter int64          `gorm:"column:balance_after" json:"balance_after"`
	Description  string         `gorm:"column:description" json:"description"`
	PreviousHash string         `gorm:"column:previous_hash" json:"previous_hash"`
	Hash         string         `gorm:"column:hash" json:"hash"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (LedgerEntry) TableName() string { return "credit_ledger_entries" }

func (m *LedgerEntry) HashFields() map[string]string {
	return map[string]string{
		"id":            m.ID,
		"user_id":       m.UserID,
		"type":          m.Type,
		"amount":        fmt.Sprintf("%d", m.Amount),
		"balance_after": fmt.Sprintf("%d", m.BalanceAfter),
		"reference_id":  m.ReferenceID,
		"description":   m.Description,
		"created_at":    m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"previous_hash": m.PreviousHash,
	}
}

func (m *LedgerEntry) GenerateHash() string {
	fields := m.HashFields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
