package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/xuri/excelize/v2"
)

const (
	sheetConsolidated = "Consolidado"
	sheetPerStore     = "Por loja"
	sheetClosings     = "Fechamentos"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeRow(f *excelize.File, sheet string, rowNo int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func boldHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// ExportDREExcel renders a DRE as an XLSX workbook with a per-store sheet and a
// consolidated sheet. Amounts are written as BRL text.
func ExportDREExcel(result *DREResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetConsolidated); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetPerStore); err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%s a %s", result.StartDate, result.EndDate)
	c := result.Consolidated
	rows := [][]interface{}{
		{"Período", period},
		{"Entradas", utils.FormatBRL(c.TotalEntradas)},
		{"Saídas", utils.FormatBRL(c.TotalSaidas)},
		{"Outros", utils.FormatBRL(c.TotalOutros)},
		{"Resultado", utils.FormatBRL(c.Resultado)},
		{"Resultado líquido (caixa)", utils.FormatBRL(c.NetResult)},
		{"Fechamentos", c.ClosingCount},
	}
	for i, row := range rows {
		if err := writeRow(f, sheetConsolidated, i+1, row...); err != nil {
			return nil, err
		}
	}

	headers := []interface{}{"Loja", "Entradas", "Saídas", "Outros", "Resultado", "Resultado líquido", "Fechamentos"}
	if err := writeRow(f, sheetPerStore, 1, headers...); err != nil {
		return nil, err
	}
	if err := boldHeader(f, sheetPerStore, len(headers)); err != nil {
		return nil, err
	}
	for i, s := range result.PerStore {
		name := s.StoreName
		if name == "" {
			name = fmt.Sprintf("Loja %d", s.StoreId)
		}
		err := writeRow(f, sheetPerStore, i+2,
			name,
			utils.FormatBRL(s.TotalEntradas),
			utils.FormatBRL(s.TotalSaidas),
			utils.FormatBRL(s.TotalOutros),
			utils.FormatBRL(s.Resultado),
			utils.FormatBRL(s.NetResult),
			s.ClosingCount,
		)
		if err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheetPerStore, "A", "A", 30)
	_ = f.SetColWidth(sheetPerStore, "B", "G", 18)
	_ = f.SetColWidth(sheetConsolidated, "A", "B", 28)

	return f.WriteToBuffer()
}

// ExportClosingsExcel lists closings one per row.
func ExportClosingsExcel(closings []*models.StoreClosing, storeNames map[int]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetClosings); err != nil {
		return nil, err
	}
	headers := []interface{}{"Data", "Loja", "Saldo inicial", "Saldo final", "Entradas", "Saídas", "Outros", "Resultado líquido", "Observações"}
	if err := writeRow(f, sheetClosings, 1, headers...); err != nil {
		return nil, err
	}
	if err := boldHeader(f, sheetClosings, len(headers)); err != nil {
		return nil, err
	}
	for i, c := range closings {
		err := writeRow(f, sheetClosings, i+2,
			c.Date.Format("02/01/2006"),
			storeNames[c.StoreId],
			utils.FormatBRL(c.InitialBalance),
			utils.FormatBRL(c.FinalBalance),
			utils.FormatBRL(c.TotalEntradas),
			utils.FormatBRL(c.TotalSaidas),
			utils.FormatBRL(c.TotalOutros),
			utils.FormatBRL(c.NetResult),
			c.Notes,
		)
		if err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheetClosings, "A", "H", 18)
	_ = f.SetColWidth(sheetClosings, "I", "I", 40)

	return f.WriteToBuffer()
}

// ExportClosingsReport loads the closings of the current base and renders them.
func ExportClosingsReport(ctx context.Context, start models.MyDateString, end models.MyDateString, storeId *int) (*bytes.Buffer, error) {
	closings, err := models.ListStoreClosings(ctx, start, end, storeId, false)
	if err != nil {
		return nil, err
	}
	stores, err := models.GetStores(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return ExportClosingsExcel(closings, names)
}

// UploadExport stores a rendered workbook in GCS and returns its access URL.
func UploadExport(ctx context.Context, objectName string, buf *bytes.Buffer) (string, error) {
	if err := utils.UploadBytesToGCS(ctx, objectName, buf.Bytes(), xlsxContentType); err != nil {
		return "", err
	}
	return utils.BuildObjectAccessURL(objectName), nil
}
