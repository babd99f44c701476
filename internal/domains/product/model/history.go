package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// AUDIT HISTORY
// =====================================================

// HistoryCategory classifies an audit entry for presentation only.
type HistoryCategory string

const (
	HistoryNeutral HistoryCategory = "neutral"
	HistoryWaiting HistoryCategory = "waiting"
	HistoryAction  HistoryCategory = "action"
	HistorySuccess HistoryCategory = "success"
)

func (c HistoryCategory) IsValid() bool {
	switch c {
	case HistoryNeutral, HistoryWaiting, HistoryAction, HistorySuccess:
		return true
	}
	return false
}

// HistoryEntry is one immutable audit record. Entries are appended on every
// successful transition and never mutated or removed.
type HistoryEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Actor       string          `json:"actor" db:"actor"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Category    HistoryCategory `json:"category" db:"category"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
}

// NewHistoryEntry builds an entry stamped with the current time.
func NewHistoryEntry(productID uuid.UUID, actor, title, description string, category HistoryCategory) *HistoryEntry {
	if !category.IsValid() {
		category = HistoryNeutral
	}
	return &HistoryEntry{
		ID:          uuid.New(),
		ProductID:   productID,
		Actor:       actor,
		Title:       title,
		Description: description,
		Category:    category,
		Timestamp:   time.Now(),
	}
}
