package queries

import (
	"fmt"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/db"
	log "github.com/sirupsen/logrus"
)

// InsertGenerationRequest records one generation call in the ledger.
func InsertGenerationRequest(req *db.GenerationRequest) error {
	query := `
        INSERT INTO generation_requests (id, prompt, class_name, status, error_detail)
        VALUES (:id, :prompt, :class_name, :status, :error_detail)
        RETURNING created_at`

	rows, err := db.DB.NamedQuery(query, req)
	if err != nil {
		log.Errorf("Error inserting generation request: %v", err)
		return fmt.Errorf("failed to record generation request: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&req.CreatedAt); err != nil {
			return fmt.Errorf("error scanning generation request after insert: %w", err)
		}
	}

	log.Debugf("Generation request %s recorded (status %s)", req.ID.String(), req.Status)
	return nil
}

// RecentGenerationRequests returns the latest ledger rows, newest first.
func RecentGenerationRequests(limit int) ([]db.GenerationRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	requests := []db.GenerationRequest{}
	query := `
        SELECT id, prompt, class_name, status, error_detail, created_at
        FROM generation_requests
        ORDER BY created_at DESC
        LIMIT $1`

	if err := db.DB.Select(&requests, query, limit); err != nil {
		log.Errorf("Error listing generation requests: %v", err)
		return nil, fmt.Errorf("failed to list generation requests: %w", err)
	}
	return requests, nil
}
