package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/InvoiceFlow/internal/logging"
)

// Service is the caller-facing ingestion operation. Each call acquires
// a fresh store handle, persists one order, flushes, and releases the
// handle on every exit path; no workbook state survives between calls.
//
// The store assumes at most one writer, so Ingest serializes callers
// with a mutex. Two overlapping persist calls would otherwise read the
// same next id and silently duplicate identifiers on the second flush.
type Service struct {
	open StoreOpener

	mu sync.Mutex
}

// NewService creates a Service acquiring store handles through open.
func NewService(open StoreOpener) *Service {
	return &Service{open: open}
}

// Ingest normalizes, reconciles, and durably appends one order,
// returning the assigned SalesOrderID. The record cannot be stored
// when a destination table is missing its identifier column; that and
// any store I/O failure surface as an error with nothing reported as
// partial success.
func (s *Service) Ingest(ctx context.Context, rec *Record) (int, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Inbound clamp runs before reconciliation, at the boundary.
	Normalize(ctx, rec)

	store, err := s.open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.FromContext(ctx).Warn("closing store", "error", cerr)
		}
	}()

	return NewPersister(store).Persist(ctx, rec)
}
