package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/InvoiceFlow/internal/logging"
	"github.com/JonMunkholm/InvoiceFlow/internal/schema"
	"github.com/shopspring/decimal"
)

// Persister appends one reconciled order to an open store handle as a
// header row plus one detail row per line item. The two tables are
// written as a single logical unit: ids for both are allocated before
// the first append so a schema problem aborts with nothing written.
//
// The underlying store has no multi-row transaction primitive. An I/O
// failure between the header append and the flush can leave an orphan
// header with no details; that risk is accepted for the intended
// single-operator deployment and is not detected or repaired here.
type Persister struct {
	store Store
}

// NewPersister returns a Persister writing through the given handle.
func NewPersister(store Store) *Persister {
	return &Persister{store: store}
}

// Persist reconciles rec and appends it to the store, returning the
// newly assigned SalesOrderID. Reconciliation is idempotent, so a
// record normalized earlier at the boundary is written unchanged.
func (p *Persister) Persist(ctx context.Context, rec *Record) (int, error) {
	log := logging.FromContext(ctx)

	header, err := p.store.Table(schema.HeaderTable)
	if err != nil {
		return 0, err
	}
	detail, err := p.store.Table(schema.DetailTable)
	if err != nil {
		return 0, err
	}

	// Allocate both ids up front: a missing id column in either table
	// must abort before any row is written.
	orderID, err := NextID(header, schema.HeaderIDColumn)
	if err != nil {
		return 0, err
	}
	detailID, err := NextID(detail, schema.DetailIDColumn)
	if err != nil {
		return 0, err
	}

	Reconcile(ctx, rec)

	headerCols, err := header.Columns()
	if err != nil {
		return 0, err
	}
	detailCols, err := detail.Columns()
	if err != nil {
		return 0, err
	}
	logMissingColumns(ctx, schema.HeaderTable, headerCols, schema.HeaderFieldSpecs)
	logMissingColumns(ctx, schema.DetailTable, detailCols, schema.DetailFieldSpecs)

	if err := header.AppendRow(AlignRow(headerCols, p.headerFields(orderID, rec))); err != nil {
		return 0, fmt.Errorf("append header row: %w", err)
	}

	// Detail ids are consecutive within the order's batch, assigned in
	// input order. Every detail row references the header written above.
	for i, li := range rec.LineItems {
		fields := detailFields(orderID, detailID+i, li)
		if err := detail.AppendRow(AlignRow(detailCols, fields)); err != nil {
			return 0, fmt.Errorf("append detail row %d: %w", i+1, err)
		}
	}

	if err := p.store.Flush(); err != nil {
		return 0, fmt.Errorf("flush store: %w", err)
	}

	log.Info("order persisted",
		"sales_order_id", orderID,
		"line_items", len(rec.LineItems),
		"total_due", rec.TotalDue,
	)
	return orderID, nil
}

// headerFields builds the header row's field mapping. Unset optional
// attributes map to nil so the adapter writes an empty cell.
func (p *Persister) headerFields(orderID int, rec *Record) map[string]any {
	po := rec.PurchaseOrderNumber
	if po == "" {
		po = rec.InvoiceNumber
	}

	var account any
	customerID := 0
	if rec.Customer != nil {
		if rec.Customer.AccountNumber != "" {
			account = rec.Customer.AccountNumber
		}
		customerID = IntOr(rec.Customer.CustomerID, 0)
	}

	invoice := rec.InvoiceNumber
	if invoice == "" {
		invoice = "N/A"
	}

	return map[string]any{
		"SalesOrderID":        orderID,
		"RevisionNumber":      1,
		"OrderDate":           textOrNil(rec.OrderDate),
		"DueDate":             textOrNil(rec.DueDate),
		"ShipDate":            textOrNil(rec.ShipDate),
		"Status":              1,
		"OnlineOrderFlag":     false,
		"SalesOrderNumber":    "SO-" + strconv.Itoa(orderID),
		"PurchaseOrderNumber": textOrNil(po),
		"AccountNumber":       account,
		"CustomerID":          customerID,
		"SubTotal":            amountCell(rec.Subtotal),
		"TaxAmt":              amountCell(rec.Tax),
		"Freight":             amountCell(rec.Freight),
		"TotalDue":            amountCell(rec.TotalDue),
		"Comment":             "Invoice import: " + invoice,
	}
}

func detailFields(orderID, detailID int, li *LineItem) map[string]any {
	return map[string]any{
		"SalesOrderID":          orderID,
		"SalesOrderDetailID":    detailID,
		"OrderQty":              amountCell(li.Qty),
		"UnitPrice":             amountCell(li.UnitPrice),
		"UnitPriceDiscount":     amountCell(li.UnitPriceDiscount),
		"LineTotal":             amountCell(li.LineTotal),
		"ProductID":             textOrNil(li.Product()),
		"CarrierTrackingNumber": nil,
		"SpecialOfferID":        nil,
	}
}

// amountCell converts a reconciled numeric field to the float64 the
// store writes into a cell. Absent and unparsable both become 0.
func amountCell(v any) float64 {
	return AmountOr(v, decimal.Zero).InexactFloat64()
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func logMissingColumns(ctx context.Context, table string, declared []string, specs []schema.FieldSpec) {
	if missing := schema.Missing(declared, specs); len(missing) > 0 {
		logging.FromContext(ctx).Debug("destination sheet does not declare recognized columns",
			"table", table, "columns", missing)
	}
}
