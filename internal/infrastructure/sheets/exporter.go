// Package sheets appends order summaries to a Google Sheet
package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/infrastructure/config"
)

// Row columns: order id, name, phone, quantity, status, address
const columnRange = "A:F"

// Exporter implements the order SheetExporter port
type Exporter struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
	logger        *zap.Logger
}

// NewExporter creates an Exporter with service account credentials.
// Extra client options are appended, which tests use to redirect the endpoint.
func NewExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*Exporter, error) {
	base := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		base = append(base, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Exporter{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

// AppendOrderRow appends one row for the order
func (e *Exporter) AppendOrderRow(ctx context.Context, o *order.Order) (bool, error) {
	row := &sheets.ValueRange{Values: [][]any{OrderRow(o)}}

	_, err := e.values.Append(e.spreadsheetID, e.sheetName+"!"+columnRange, row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to append order %d to sheet: %w", o.ID, err)
	}
	e.logger.Debug("Order appended to sheet",
		zap.Int64("order_id", o.ID),
		zap.String("spreadsheet_id", e.spreadsheetID),
	)
	return true, nil
}

// OrderRow builds the exported cells
func OrderRow(o *order.Order) []any {
	return []any{
		o.ID,
		o.Contact.Name,
		strings.TrimSpace(o.Contact.Mobile),
		o.TotalQuantity(),
		string(o.Status),
		o.Contact.Address,
	}
}

// Disabled is used when no spreadsheet is configured
type Disabled struct{}

// AppendOrderRow reports that nothing was exported
func (Disabled) AppendOrderRow(context.Context, *order.Order) (bool, error) {
	return false, nil
}
