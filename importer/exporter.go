package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Листы Excel-выгрузки
const (
	sheetCompanies = "Companies"
	sheetErrors    = "Import errors"
)

// ExportExcel выгружает снапшот в xlsx: лист с компаниями и лист с
// ошибками импорта. Комиссия работает со списком в таблицах, поэтому
// формат повторяет колонки договора.
func ExportExcel(w io.Writer, snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetCompanies)

	header := []interface{}{
		"ID", "Company", "Representative", "AMIV representative",
		"Address", "City", "Country", "Booth", "Days", "Packets",
	}
	if err := f.SetSheetRow(sheetCompanies, "A1", &header); err != nil {
		return fmt.Errorf("export companies header: %w", err)
	}

	for i, record := range snap.Records {
		packets := ""
		if record.First != nil {
			packets += record.First.Description + "; "
		}
		if record.Business != nil {
			packets += record.Business.Description + "; "
		}
		if record.Media != nil {
			packets += record.Media.Description + "; "
		}
		if len(packets) > 2 {
			packets = packets[:len(packets)-2]
		}

		row := []interface{}{
			record.ID,
			record.CompanyName,
			record.CompanyRepresentative,
			record.AMIVRepresentative,
			record.CompanyAddress,
			record.CompanyCity,
			record.CompanyCountry,
			record.BoothChoice.Description,
			record.Days,
			packets,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetCompanies, cell, &row); err != nil {
			return fmt.Errorf("export company row %d: %w", i, err)
		}
	}

	if _, err := f.NewSheet(sheetErrors); err != nil {
		return fmt.Errorf("create errors sheet: %w", err)
	}
	errHeader := []interface{}{"Company", "Reason"}
	if err := f.SetSheetRow(sheetErrors, "A1", &errHeader); err != nil {
		return fmt.Errorf("export errors header: %w", err)
	}

	rowNum := 2
	for company, reason := range snap.Errors {
		row := []interface{}{company, reason}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetErrors, cell, &row); err != nil {
			return fmt.Errorf("export error row: %w", err)
		}
		rowNum++
	}

	return f.Write(w)
}
