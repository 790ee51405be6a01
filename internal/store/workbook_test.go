package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newWorkbookFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "SalesOrderHeader"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("SalesOrderDetail"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("SalesOrderHeader", "A1", &[]any{"SalesOrderID", "SalesOrderNumber", "SubTotal"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("SalesOrderDetail", "A1", &[]any{"SalesOrderID", "SalesOrderDetailID", "LineTotal"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	return path
}

func TestWorkbook_Columns(t *testing.T) {
	path := newWorkbookFile(t)

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer wb.Close()

	tbl, err := wb.Table("SalesOrderHeader")
	if err != nil {
		t.Fatalf("Table error = %v", err)
	}

	cols, err := tbl.Columns()
	if err != nil {
		t.Fatalf("Columns error = %v", err)
	}
	want := []string{"SalesOrderID", "SalesOrderNumber", "SubTotal"}
	if len(cols) != len(want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("columns[%d] = %q, want %q", i, cols[i], want[i])
		}
	}
}

func TestWorkbook_MissingSheet(t *testing.T) {
	path := newWorkbookFile(t)

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer wb.Close()

	if _, err := wb.Table("Nope"); err == nil {
		t.Error("Table on missing sheet returned no error")
	}
}

func TestWorkbook_AppendAndFlush(t *testing.T) {
	path := newWorkbookFile(t)

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	tbl, err := wb.Table("SalesOrderHeader")
	if err != nil {
		t.Fatalf("Table error = %v", err)
	}

	if err := tbl.AppendRow([]any{1, "SO-1", 200.0}); err != nil {
		t.Fatalf("AppendRow error = %v", err)
	}
	if err := tbl.AppendRow([]any{2, nil, 50.5}); err != nil {
		t.Fatalf("AppendRow error = %v", err)
	}
	if err := wb.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}
	wb.Close()

	// Reopen: appended rows must be durable and read back in order.
	wb2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer wb2.Close()

	tbl2, err := wb2.Table("SalesOrderHeader")
	if err != nil {
		t.Fatalf("Table error = %v", err)
	}
	cells, err := tbl2.ColumnCells(0)
	if err != nil {
		t.Fatalf("ColumnCells error = %v", err)
	}
	if len(cells) != 2 || cells[0] != "1" || cells[1] != "2" {
		t.Errorf("id cells = %v, want [1 2]", cells)
	}

	// The nil cell stays empty rather than becoming a zero.
	orderNums, err := tbl2.ColumnCells(1)
	if err != nil {
		t.Fatalf("ColumnCells error = %v", err)
	}
	if len(orderNums) > 0 && orderNums[0] != "SO-1" {
		t.Errorf("order number cell = %q, want SO-1", orderNums[0])
	}
}

func TestWorkbook_FlushLeavesNoTempFiles(t *testing.T) {
	path := newWorkbookFile(t)

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer wb.Close()

	if err := wb.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(path) {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestWorkbook_ColumnCellsOutOfRange(t *testing.T) {
	path := newWorkbookFile(t)

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer wb.Close()

	tbl, err := wb.Table("SalesOrderDetail")
	if err != nil {
		t.Fatalf("Table error = %v", err)
	}
	cells, err := tbl.ColumnCells(99)
	if err != nil {
		t.Fatalf("ColumnCells error = %v", err)
	}
	if len(cells) != 0 {
		t.Errorf("cells = %v, want none", cells)
	}
}
