package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/velardo/doccontrol/internal/core/domain"
)

var transmittalColumns = []string{"Document Number", "Title", "Revision", "Description", "Step"}

// TransmittalWriter renders a project's active revisions as an xlsx
// transmittal sheet.
type TransmittalWriter struct {
	now func() time.Time
}

func NewTransmittalWriter() *TransmittalWriter {
	return &TransmittalWriter{now: func() time.Time { return time.Now().UTC() }}
}

// Write returns the xlsx payload and a dated filename for the download.
func (w *TransmittalWriter) Write(projectID int64, lines []domain.TransmittalLine) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Transmittal"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range transmittalColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, line := range lines {
		values := []string{line.DocumentNumber, line.DocumentTitle, line.SequenceNumber, line.DescriptionCode, line.StepCode}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range transmittalColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 24)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("transmittal_project-%d_%s.xlsx", projectID, w.now().Format("2006-01-02"))
	return buffer.Bytes(), filename, nil
}
