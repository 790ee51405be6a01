// Package ingest provides the order-ingestion core: financial
// reconciliation of extracted invoice records and the two-table
// append operation that persists them.
// This package has no HTTP or extraction dependencies and can be
// driven by any frontend.
package ingest

import "context"

// Table is one named, schema-ordered row store inside a Store.
// Column order is owned by the destination and read fresh on every
// call; it is never cached here.
type Table interface {
	// Name returns the table's name as declared by the store.
	Name() string

	// Columns returns the declared column names in authoritative order.
	Columns() ([]string, error)

	// ColumnCells returns the data cells under the header for the
	// zero-based column index, in append order. Empty trailing cells
	// may be omitted.
	ColumnCells(index int) ([]string, error)

	// AppendRow writes one row after the last existing row. The slice
	// must hold one value per declared column; nil writes an empty cell.
	AppendRow(values []any) error
}

// Store is an open handle on the destination workbook. Mutations are
// buffered until Flush, which must be atomic-or-nothing from the
// perspective of a concurrent reader.
type Store interface {
	Table(name string) (Table, error)
	Flush() error
	Close() error
}

// StoreOpener acquires a fresh Store handle for one persist call.
// The service opens, mutates, flushes, and closes per ingestion so no
// workbook state survives between calls.
type StoreOpener func(ctx context.Context) (Store, error)

// Record is the sparse input structure describing one candidate order,
// as produced by the extraction step. No field is required; absence is
// a valid state. Numeric fields are deliberately untyped so that
// whatever the extractor emitted (number, numeric string, null,
// garbage) survives until coercion.
type Record struct {
	InvoiceNumber       string      `json:"invoiceNumber,omitempty"`
	OrderDate           string      `json:"orderDate,omitempty"`
	DueDate             string      `json:"dueDate,omitempty"`
	ShipDate            string      `json:"shipDate,omitempty"`
	PurchaseOrderNumber string      `json:"purchaseOrderNumber,omitempty"`
	Terms               string      `json:"terms,omitempty"`
	ShipVia             string      `json:"shipVia,omitempty"`
	Customer            *Customer   `json:"customer,omitempty"`
	Subtotal            any         `json:"subtotal,omitempty"`
	TaxRate             any         `json:"taxRate,omitempty"`
	Tax                 any         `json:"tax,omitempty"`
	Freight             any         `json:"freight,omitempty"`
	TotalDue            any         `json:"totalDue,omitempty"`
	LineItems           []*LineItem `json:"lineItems,omitempty"`
}

// Customer carries the optional nested customer block of a Record.
type Customer struct {
	CustomerID    any    `json:"customerId,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	Name          string `json:"name,omitempty"`
}

// LineItem is one invoice line. LineTotal is filled from Qty and
// UnitPrice during reconciliation when the extractor omitted it.
type LineItem struct {
	ProductNumber     string `json:"productNumber,omitempty"`
	ItemNumber        string `json:"itemNumber,omitempty"`
	Description       string `json:"description,omitempty"`
	Qty               any    `json:"qty,omitempty"`
	UnitPrice         any    `json:"unitPrice,omitempty"`
	UnitPriceDiscount any    `json:"unitPriceDiscount,omitempty"`
	LineTotal         any    `json:"lineTotal,omitempty"`
}

// Product returns the line's product reference, preferring the
// explicit productNumber over the extractor's itemNumber alias.
func (li *LineItem) Product() string {
	if li.ProductNumber != "" {
		return li.ProductNumber
	}
	return li.ItemNumber
}
