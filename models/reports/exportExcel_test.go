package reports

import (
	"testing"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/xuri/excelize/v2"
)

func TestExportDREExcel(t *testing.T) {
	result := GenerateDRE(sampleClosings(), day("2024-01-01"), day("2024-01-31"), nil)
	result.PerStore[0].StoreName = "Matriz"

	buf, err := ExportDREExcel(result)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue(sheetPerStore, "A2")
	if err != nil || name != "Matriz" {
		t.Fatalf("expected Matriz in A2, got %q (%v)", name, err)
	}
	fallback, _ := f.GetCellValue(sheetPerStore, "A3")
	if fallback != "Loja 2" {
		t.Fatalf("expected fallback store name, got %q", fallback)
	}
	entradas, _ := f.GetCellValue(sheetConsolidated, "B2")
	if entradas != "R$ 380,50" {
		t.Fatalf("expected formatted consolidated entradas, got %q", entradas)
	}
}

func TestExportClosingsExcel(t *testing.T) {
	closings := []*models.StoreClosing{closing(1, "2024-01-10", "200", "50", "0", "150")}
	buf, err := ExportClosingsExcel(closings, map[int]string{1: "Matriz"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetClosings)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[1][0] != "10/01/2024" || rows[1][1] != "Matriz" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}
