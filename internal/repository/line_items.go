package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/model"
)

type lineItemTable struct {
	name      string
	parentCol string
}

var (
	estimateLines = lineItemTable{name: "estimate_line_items", parentCol: "estimate_id"}
	invoiceLines  = lineItemTable{name: "invoice_line_items", parentCol: "invoice_id"}
)

func (t lineItemTable) insert(tx *gorm.DB, parentID uuid.UUID, items []model.LineItem) ([]model.LineItem, error) {
	saved := make([]model.LineItem, 0, len(items))
	for i, item := range items {
		var row model.LineItem
		err := tx.Raw(fmt.Sprintf(`
			INSERT INTO %s (%s, line_key, description, qty, unit_price, total_price, metadata, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id, %s AS document_id, line_key AS key, description, qty, unit_price, total_price, metadata, sort_order
		`, t.name, t.parentCol, t.parentCol),
			parentID,
			item.Key,
			item.Description,
			item.Qty,
			item.UnitPrice,
			item.TotalPrice,
			item.Metadata,
			i,
		).Scan(&row).Error
		if err != nil {
			return nil, err
		}
		saved = append(saved, row)
	}
	return saved, nil
}

func (t lineItemTable) load(ctx context.Context, db *gorm.DB, parentIDs []uuid.UUID) (map[uuid.UUID][]model.LineItem, error) {
	result := make(map[uuid.UUID][]model.LineItem, len(parentIDs))
	if len(parentIDs) == 0 {
		return result, nil
	}

	var rows []model.LineItem
	err := db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT id, %s AS document_id, line_key AS key, description, qty, unit_price, total_price, metadata, sort_order
		FROM %s
		WHERE %s IN ?
		ORDER BY sort_order ASC
	`, t.parentCol, t.name, t.parentCol), parentIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.DocumentID] = append(result[row.DocumentID], row)
	}
	return result, nil
}
