package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/db"
	"github.com/nurpe/finishing-touch/internal/model"
)

const invoiceSelect = `
	SELECT
		i.id,
		i.number,
		i.status,
		i.derived_from_estimate_id,
		e.number AS derived_from_estimate_number,
		i.customer_name,
		i.customer_phone,
		i.customer_email,
		i.customer_job_address,
		i.currency_symbol,
		i.subtotal,
		i.tax,
		i.total,
		i.created_at,
		i.updated_at
	FROM invoices i
	LEFT JOIN estimates e ON e.id = i.derived_from_estimate_id
`

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) LatestNumber(ctx context.Context) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Raw(`
		SELECT number FROM invoices ORDER BY created_at DESC, number DESC LIMIT 1
	`).Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice model.Invoice) (*model.Invoice, error) {
	var saved *model.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := insertInvoice(tx, invoice)
		if err != nil {
			return err
		}
		saved = created
		return nil
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, db.ConstraintInvoiceNumber):
			return nil, ErrDuplicateNumber
		case db.IsUniqueViolation(err, db.ConstraintInvoiceEstimate):
			return nil, ErrAlreadyInvoiced
		case db.IsForeignKeyViolation(err, db.ConstraintInvoiceEstimateLink):
			return nil, ErrUnknownEstimate
		}
		return nil, err
	}
	return saved, nil
}

func insertInvoice(tx *gorm.DB, invoice model.Invoice) (*model.Invoice, error) {
	var saved model.Invoice
	err := tx.Raw(`
		INSERT INTO invoices (
			number,
			status,
			derived_from_estimate_id,
			customer_name,
			customer_phone,
			customer_email,
			customer_job_address,
			currency_symbol,
			subtotal,
			tax,
			total
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			number,
			status,
			derived_from_estimate_id,
			customer_name,
			customer_phone,
			customer_email,
			customer_job_address,
			currency_symbol,
			subtotal,
			tax,
			total,
			created_at,
			updated_at
	`,
		invoice.Number,
		invoice.Status,
		invoice.DerivedFromEstimateID,
		invoice.CustomerName,
		invoice.CustomerPhone,
		invoice.CustomerEmail,
		invoice.CustomerJobAddress,
		invoice.CurrencySymbol,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Total,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}

	lines, err := invoiceLines.insert(tx, saved.ID, invoice.LineItems)
	if err != nil {
		return nil, err
	}
	saved.LineItems = lines
	saved.DerivedFromEstimateNumber = invoice.DerivedFromEstimateNumber
	return &saved, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return r.getOne(ctx, `WHERE i.id = ?`, id)
}

func (r *InvoiceRepository) GetByEstimate(ctx context.Context, estimateID uuid.UUID) (*model.Invoice, error) {
	return r.getOne(ctx, `WHERE i.derived_from_estimate_id = ?`, estimateID)
}

func (r *InvoiceRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Raw(invoiceSelect+where+` LIMIT 1`, arg).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	lines, err := invoiceLines.load(ctx, r.db, []uuid.UUID{invoice.ID})
	if err != nil {
		return nil, err
	}
	invoice.LineItems = nonNilLines(lines[invoice.ID])
	return &invoice, nil
}

func (r *InvoiceRepository) List(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error) {
	query := invoiceSelect
	var conditions []string
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		conditions = append(conditions, `(i.number ILIKE ? OR i.customer_name ILIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if filter.Status != nil {
		conditions = append(conditions, "i.status = ?")
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.created_at DESC"

	var invoices []model.Invoice
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&invoices).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}
	lines, err := invoiceLines.load(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].LineItems = nonNilLines(lines[invoices[i].ID])
	}
	return invoices, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE invoices SET status = ?, updated_at = NOW() WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
