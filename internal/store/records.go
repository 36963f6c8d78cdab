// internal/store/records.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"finance-intake/internal/common/logger"
	"finance-intake/internal/models"
)

const insertRecordSQL = `
	INSERT INTO application_records
		(id, session_id, company_name, representative, offer_type, lender,
		 term_months, monthly_payment, total_amount, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// RecordStore persists signed application records to Postgres.
type RecordStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRecordStore(db *sql.DB, log logger.Logger) *RecordStore {
	return &RecordStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "records"}),
	}
}

// Insert writes one signed application.
func (s *RecordStore) Insert(ctx context.Context, rec *models.ApplicationRecord) error {
	_, err := s.db.ExecContext(ctx, insertRecordSQL,
		rec.ID,
		rec.SessionID,
		rec.CompanyName,
		rec.Representative,
		string(rec.OfferType),
		rec.Lender,
		rec.TermMonths,
		rec.MonthlyPayment,
		rec.TotalAmount,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application record: %w", err)
	}

	s.logger.Info("application record stored", map[string]interface{}{
		"recordId":  rec.ID,
		"sessionId": rec.SessionID,
		"offerType": string(rec.OfferType),
	})
	return nil
}
