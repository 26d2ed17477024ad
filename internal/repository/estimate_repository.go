package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/db"
	"github.com/nurpe/finishing-touch/internal/model"
)

const estimateSelect = `
	SELECT
		e.id,
		e.number,
		e.status,
		e.moving_date,
		e.customer_id,
		e.customer_name,
		e.customer_phone,
		e.customer_email,
		e.customer_job_address,
		e.currency_symbol,
		e.subtotal,
		e.tax,
		e.total,
		e.notes,
		i.id AS invoice_id,
		i.number AS invoice_number,
		e.created_at,
		e.updated_at
	FROM estimates e
	LEFT JOIN invoices i ON i.derived_from_estimate_id = e.id
`

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

func (r *EstimateRepository) LatestNumber(ctx context.Context) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Raw(`
		SELECT number FROM estimates ORDER BY created_at DESC, number DESC LIMIT 1
	`).Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *EstimateRepository) Create(ctx context.Context, estimate model.Estimate) (*model.Estimate, error) {
	var saved model.Estimate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO estimates (
				number,
				status,
				moving_date,
				customer_id,
				customer_name,
				customer_phone,
				customer_email,
				customer_job_address,
				currency_symbol,
				subtotal,
				tax,
				total,
				notes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING
				id,
				number,
				status,
				moving_date,
				customer_id,
				customer_name,
				customer_phone,
				customer_email,
				customer_job_address,
				currency_symbol,
				subtotal,
				tax,
				total,
				notes,
				created_at,
				updated_at
		`,
			estimate.Number,
			estimate.Status,
			estimate.MovingDate,
			estimate.CustomerID,
			estimate.CustomerName,
			estimate.CustomerPhone,
			estimate.CustomerEmail,
			estimate.CustomerJobAddress,
			estimate.CurrencySymbol,
			estimate.Subtotal,
			estimate.Tax,
			estimate.Total,
			estimate.Notes,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		lines, err := estimateLines.insert(tx, saved.ID, estimate.LineItems)
		if err != nil {
			return err
		}
		saved.LineItems = lines
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, db.ConstraintEstimateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, err
	}
	return &saved, nil
}

func (r *EstimateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	err := r.db.WithContext(ctx).Raw(estimateSelect+` WHERE e.id = ? LIMIT 1`, id).Scan(&estimate).Error
	if err != nil {
		return nil, err
	}
	if estimate.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	lines, err := estimateLines.load(ctx, r.db, []uuid.UUID{estimate.ID})
	if err != nil {
		return nil, err
	}
	estimate.LineItems = nonNilLines(lines[estimate.ID])
	return &estimate, nil
}

func (r *EstimateRepository) List(ctx context.Context, filter model.EstimateFilter) ([]model.Estimate, error) {
	query := estimateSelect
	var conditions []string
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		conditions = append(conditions, `(e.number ILIKE ? OR e.customer_name ILIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if filter.Status != nil {
		conditions = append(conditions, "e.status = ?")
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.created_at DESC"

	var estimates []model.Estimate
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&estimates).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(estimates))
	for i := range estimates {
		ids[i] = estimates[i].ID
	}
	lines, err := estimateLines.load(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range estimates {
		estimates[i].LineItems = nonNilLines(lines[estimates[i].ID])
	}
	return estimates, nil
}

// Update changes status and notes; nil arguments keep the stored value.
func (r *EstimateRepository) Update(ctx context.Context, id uuid.UUID, status *model.EstimateStatus, notes *string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE estimates
		SET
			status = COALESCE(?, status),
			notes = COALESCE(?, notes),
			updated_at = NOW()
		WHERE id = ?
	`, status, notes, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *EstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM estimates WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConvertToInvoice stores the invoice with its copied lines and marks the
// estimate INVOICED in one transaction. The estimate row is locked so two
// concurrent conversions serialize; the loser sees ErrAlreadyInvoiced. The
// status is re-read under the lock, so a DECLINED estimate yields
// ErrEstimateDeclined.
func (r *EstimateRepository) ConvertToInvoice(ctx context.Context, estimateID uuid.UUID, invoice model.Invoice) (*model.Invoice, error) {
	var saved *model.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct {
			ID     uuid.UUID
			Status model.EstimateStatus
		}
		if err := tx.Raw(`SELECT id, status FROM estimates WHERE id = ? FOR UPDATE`, estimateID).Scan(&locked).Error; err != nil {
			return err
		}
		if locked.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		if locked.Status == model.EstimateStatusDeclined {
			return ErrEstimateDeclined
		}

		var existing int64
		if err := tx.Raw(`SELECT COUNT(*) FROM invoices WHERE derived_from_estimate_id = ?`, estimateID).Scan(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyInvoiced
		}

		invoice.DerivedFromEstimateID = &estimateID
		created, err := insertInvoice(tx, invoice)
		if err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE estimates SET status = ?, updated_at = NOW() WHERE id = ?
		`, model.EstimateStatusInvoiced, estimateID).Error; err != nil {
			return err
		}
		saved = created
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEstimateDeclined):
			return nil, ErrEstimateDeclined
		case errors.Is(err, ErrAlreadyInvoiced), db.IsUniqueViolation(err, db.ConstraintInvoiceEstimate):
			return nil, ErrAlreadyInvoiced
		case db.IsUniqueViolation(err, db.ConstraintInvoiceNumber):
			return nil, ErrDuplicateNumber
		}
		return nil, err
	}
	return saved, nil
}

func nonNilLines(lines []model.LineItem) []model.LineItem {
	if lines == nil {
		return []model.LineItem{}
	}
	return lines
}
