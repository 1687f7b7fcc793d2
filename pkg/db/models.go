package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// GenerationRequest is one row of the audit ledger: a generation call and
// its outcome. The ledger indexes requests, never assets; asset existence
// is always re-derived from the store directory.
type GenerationRequest struct {
	ID          uuid.UUID      `db:"id"`
	Prompt      string         `db:"prompt"`
	ClassName   sql.NullString `db:"class_name"`
	Status      string         `db:"status"` // "succeeded" or "failed"
	ErrorDetail sql.NullString `db:"error_detail"`
	CreatedAt   time.Time      `db:"created_at"`
}
