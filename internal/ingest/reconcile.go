package ingest

// reconcile.go fills the derivable financial fields of a Record using
// a fixed precedence: trust an explicit value, otherwise derive it
// from what is present. A zero counts as unset for derivation targets,
// so a value pre-filled to 0 upstream is still recomputed from better
// signal here. Monetary values are finalized at 2 decimal places, tax
// rates at 4. Both passes are idempotent.

import (
	"context"

	"github.com/JonMunkholm/InvoiceFlow/internal/logging"
	"github.com/shopspring/decimal"
)

var maxInferredTaxRate = decimal.NewFromFloat(0.2)

// Normalize is the inbound sanity clamp applied at the boundary,
// before reconciliation. When the record carries an explicit non-zero
// tax and a positive subtotal, the implied rate tax/subtotal
// overwrites whatever taxRate the extractor supplied, provided it
// lands inside [0, 0.2]: extraction regularly misreads printed rates,
// and the two amounts are the more trustworthy signal. Without an
// explicit tax there is nothing to infer from, and a supplied rate is
// left for Reconcile to use. A missing totalDue is recomputed here as
// well.
func Normalize(ctx context.Context, rec *Record) {
	subtotal := coerce(ctx, "subtotal", rec.Subtotal)
	tax := coerce(ctx, "tax", rec.Tax)
	freight := coerce(ctx, "freight", rec.Freight)

	if !tax.IsZero() && subtotal.IsPositive() {
		inferred := tax.Div(subtotal).Round(4)
		if !inferred.IsNegative() && inferred.LessThanOrEqual(maxInferredTaxRate) {
			if Present(rec.TaxRate) {
				logging.FromContext(ctx).Debug("overwriting extracted tax rate",
					"supplied", rec.TaxRate, "inferred", inferred.InexactFloat64())
			}
			rec.TaxRate = inferred.InexactFloat64()
		}
	}

	if !hasValue(rec.TotalDue) {
		rec.TotalDue = subtotal.Add(tax).Add(freight).Round(2).InexactFloat64()
	}
}

// Reconcile fills every missing derivable numeric field of rec in
// place. Line items are only touched to fill a missing lineTotal.
// Unparsable numerics degrade to zero; the reconciler never fails on
// bad input.
func Reconcile(ctx context.Context, rec *Record) {
	// 1) Line totals from qty x unitPrice.
	for _, li := range rec.LineItems {
		if !hasValue(li.LineTotal) {
			qty := coerce(ctx, "qty", li.Qty)
			unit := coerce(ctx, "unitPrice", li.UnitPrice)
			li.LineTotal = qty.Mul(unit).Round(2).InexactFloat64()
		}
	}

	// 2) Subtotal: explicit, else sum of line totals.
	subtotal, ok := Amount(rec.Subtotal)
	if !ok || subtotal.IsZero() {
		if !ok {
			softFallback(ctx, "subtotal", rec.Subtotal)
		}
		subtotal = decimal.Zero
		for _, li := range rec.LineItems {
			subtotal = subtotal.Add(coerce(ctx, "lineTotal", li.LineTotal))
		}
	}
	subtotal = subtotal.Round(2)
	rec.Subtotal = subtotal.InexactFloat64()

	// 3) Tax: explicit, else subtotal x taxRate, else 0.
	tax, ok := Amount(rec.Tax)
	if !ok && Present(rec.Tax) {
		softFallback(ctx, "tax", rec.Tax)
	}
	if (!ok || tax.IsZero()) && Present(rec.TaxRate) {
		tax = subtotal.Mul(coerce(ctx, "taxRate", rec.TaxRate))
	}
	tax = tax.Round(2)
	rec.Tax = tax.InexactFloat64()

	if Present(rec.TaxRate) {
		rec.TaxRate = coerce(ctx, "taxRate", rec.TaxRate).Round(4).InexactFloat64()
	}

	// 4) Freight: explicit or 0.
	freight := coerce(ctx, "freight", rec.Freight).Round(2)
	rec.Freight = freight.InexactFloat64()

	// 5) Total due: explicit, else subtotal + tax + freight.
	total, ok := Amount(rec.TotalDue)
	if !ok || total.IsZero() {
		if !ok {
			softFallback(ctx, "totalDue", rec.TotalDue)
		}
		total = subtotal.Add(tax).Add(freight)
	}
	rec.TotalDue = total.Round(2).InexactFloat64()
}

// hasValue reports whether a numeric field carries usable, non-zero
// signal. Derivation rules treat zero like absent so that a value an
// upstream step defaulted to 0 can still be repaired.
func hasValue(v any) bool {
	d, ok := Amount(v)
	return ok && !d.IsZero()
}

// coerce converts an untyped field, logging the degrade-to-zero
// fallback when a present value failed to parse.
func coerce(ctx context.Context, field string, v any) decimal.Decimal {
	d, ok := Amount(v)
	if !ok {
		softFallback(ctx, field, v)
	}
	return d
}

// softFallback records one numeric-coercion fallback. The condition is
// never propagated as an error, but each occurrence must leave a
// distinguishable diagnostic.
func softFallback(ctx context.Context, field string, v any) {
	if v == nil {
		return
	}
	logging.FromContext(ctx).Warn("unparsable numeric input, using 0",
		"field", field, "value", v)
}
