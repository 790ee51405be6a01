// Package extract turns an invoice document into a candidate order
// Record. The model output is treated as unreliable and partial; the
// ingest package owns all repair of its financial fields.
package extract

import (
	"context"

	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
)

// Extractor converts a document into a raw Record. Implementations
// may return sparse records; no field is guaranteed.
type Extractor interface {
	// ExtractImage reads the invoice image at path.
	ExtractImage(ctx context.Context, path string) (*ingest.Record, error)

	// ExtractText extracts from plain invoice text.
	ExtractText(ctx context.Context, text string) (*ingest.Record, error)
}

// systemPrompt pins the JSON shape the model must return. It mirrors
// the Record structure in the ingest package.
const systemPrompt = `You are an invoice extraction engine.

Return ONLY valid JSON with this structure:
{
  "invoiceNumber": string,
  "orderDate": "YYYY-MM-DD",
  "dueDate": "YYYY-MM-DD",
  "shipDate": "YYYY-MM-DD or null",
  "purchaseOrderNumber": "string or null",
  "customer": { "customerId": 0, "accountNumber": null, "name": string },
  "terms": "string or null",
  "shipVia": "string or null",
  "subtotal": number,
  "taxRate": number,
  "tax": number,
  "freight": number,
  "totalDue": number,
  "lineItems": [
    {
      "itemNumber": "string or null",
      "description": string,
      "qty": number,
      "unitPrice": number,
      "unitPriceDiscount": number,
      "lineTotal": number
    }
  ]
}

Rules:
- If unknown, use null (where allowed) and customerId=0.
- Dates must be YYYY-MM-DD when you can infer them.
- Ensure lineTotal is consistent with qty and unitPrice where possible.
- If taxRate is not shown, estimate it as tax/subtotal when possible, else 0.
- If totals are missing, infer them from line items and tax/freight.`
