package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/InvoiceFlow/internal/config"
	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
	"github.com/JonMunkholm/InvoiceFlow/internal/schema"
	"github.com/JonMunkholm/InvoiceFlow/internal/store"
	"github.com/JonMunkholm/InvoiceFlow/internal/web"
)

// stubExtractor returns a fixed record for any document.
type stubExtractor struct {
	rec *ingest.Record
	err error
}

func (s *stubExtractor) ExtractImage(ctx context.Context, path string) (*ingest.Record, error) {
	return s.rec, s.err
}

func (s *stubExtractor) ExtractText(ctx context.Context, text string) (*ingest.Record, error) {
	return s.rec, s.err
}

func specNames(specs []schema.FieldSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

func newTestServer(t *testing.T, mem *store.Memory, ext *stubExtractor) *web.Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           5000,
			RequestTimeout: time.Minute,
		},
		Upload: config.UploadConfig{
			Dir:         t.TempDir(),
			MaxFileSize: 1 << 20,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
	return web.NewServer(cfg, ingest.NewService(mem.MemOpener()), ext)
}

func orderStore() *store.Memory {
	mem := store.NewMemory()
	mem.AddTable(schema.HeaderTable, specNames(schema.HeaderFieldSpecs))
	mem.AddTable(schema.DetailTable, specNames(schema.DetailFieldSpecs))
	return mem
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, orderStore(), &stubExtractor{})

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestIngestOrder(t *testing.T) {
	mem := orderStore()
	srv := newTestServer(t, mem, &stubExtractor{})

	payload := `{
		"invoiceNumber": "INV-100",
		"freight": 10,
		"lineItems": [
			{"productNumber": "BK-01", "qty": 2, "unitPrice": 50}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["orderId"] != float64(1) {
		t.Errorf("orderId = %v, want 1", body["orderId"])
	}

	header, _ := mem.Table(schema.HeaderTable)
	rows := header.(*store.MemTable).Rows()
	if len(rows) != 1 {
		t.Fatalf("header rows = %d, want 1", len(rows))
	}
	detail, _ := mem.Table(schema.DetailTable)
	if got := len(detail.(*store.MemTable).Rows()); got != 1 {
		t.Errorf("detail rows = %d, want 1", got)
	}
}

func TestIngestOrder_BadJSON(t *testing.T) {
	srv := newTestServer(t, orderStore(), &stubExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestIngestOrder_SchemaFailure(t *testing.T) {
	// SalesOrderID column absent, so the id allocation must refuse.
	mem := store.NewMemory()
	mem.AddTable(schema.HeaderTable, []string{"OrderDate", "Comment"})
	mem.AddTable(schema.DetailTable, specNames(schema.DetailFieldSpecs))
	srv := newTestServer(t, mem, &stubExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"invoiceNumber":"X"}`))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rr.Code, rr.Body.String())
	}
	header, _ := mem.Table(schema.HeaderTable)
	if got := len(header.(*store.MemTable).Rows()); got != 0 {
		t.Errorf("header rows after refused ingest = %d, want 0", got)
	}
}

// multipartUpload builds a one-file multipart body under the field
// name "file".
func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestExtractAndSaveFile(t *testing.T) {
	mem := orderStore()
	ext := &stubExtractor{rec: &ingest.Record{
		InvoiceNumber: "INV-7",
		LineItems: []*ingest.LineItem{
			{ProductNumber: "FR-01", Qty: 1, UnitPrice: 99.5},
		},
	}}
	srv := newTestServer(t, mem, ext)

	body, contentType := multipartUpload(t, "invoice.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/extract-and-save-file", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["salesOrderId"] != float64(1) {
		t.Errorf("salesOrderId = %v, want 1", resp["salesOrderId"])
	}
	if resp["filename"] != "invoice.png" {
		t.Errorf("filename = %v, want invoice.png", resp["filename"])
	}
	if mem.Flushes != 1 {
		t.Errorf("flushes = %d, want 1", mem.Flushes)
	}
}

func TestExtractFile_DoesNotPersist(t *testing.T) {
	mem := orderStore()
	ext := &stubExtractor{rec: &ingest.Record{InvoiceNumber: "INV-8"}}
	srv := newTestServer(t, mem, ext)

	body, contentType := multipartUpload(t, "scan.jpg", []byte("jpg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/extract-file", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	header, _ := mem.Table(schema.HeaderTable)
	if got := len(header.(*store.MemTable).Rows()); got != 0 {
		t.Errorf("extract-file wrote %d header rows, want 0", got)
	}
	if mem.Flushes != 0 {
		t.Errorf("flushes = %d, want 0", mem.Flushes)
	}
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, orderStore(), &stubExtractor{})

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/extract-file", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unsupported file type") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	srv := newTestServer(t, orderStore(), &stubExtractor{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("other", "value")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract-file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
