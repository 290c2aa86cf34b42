package service

import (
	"fmt"
	"time"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/xuri/excelize/v2"
)

// EvaluationRow is the outcome of one document in an evaluation run.
type EvaluationRow struct {
	Filename   string
	TextSource string
	Record     dto.InvoiceRecord
	Result     *dto.EvaluationResult
	Elapsed    time.Duration
	Err        error
}

const evaluationSheet = "Evaluation"

// EvaluationXLSX renders evaluation rows as a workbook: one row per
// document with the predicted value of each field and, when an expected
// record was available, the per-field verdict and accuracy.
func EvaluationXLSX(rows []EvaluationRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(evaluationSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(evaluationSheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Document", "Source"}
	headers = append(headers, dto.FieldNames...)
	headers = append(headers, "Correct", "Accuracy", "Elapsed ms", "Error")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(evaluationSheet, cell, h)
	}

	okStyle, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1}})
	if err != nil {
		return nil, err
	}
	badStyle, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1}})
	if err != nil {
		return nil, err
	}

	for r, row := range rows {
		line := r + 2
		write := func(col int, v any) string {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			_ = f.SetCellValue(evaluationSheet, cell, v)
			return cell
		}

		write(1, row.Filename)
		write(2, row.TextSource)
		for i, field := range dto.FieldNames {
			cell := write(3+i, row.Record.Get(field))
			if row.Result == nil {
				continue
			}
			style := badStyle
			if row.Result.Fields[i].OK {
				style = okStyle
			}
			_ = f.SetCellStyle(evaluationSheet, cell, cell, style)
		}

		col := 3 + len(dto.FieldNames)
		if row.Result != nil {
			write(col, fmt.Sprintf("%d/%d", row.Result.Correct, row.Result.Total))
			write(col+1, row.Result.Accuracy)
		}
		write(col+2, row.Elapsed.Milliseconds())
		if row.Err != nil {
			write(col+3, row.Err.Error())
		}
	}

	_ = f.SetColWidth(evaluationSheet, "A", "A", 32)
	_ = f.SetColWidth(evaluationSheet, "C", "I", 18)
	_ = f.SetColWidth(evaluationSheet, "M", "M", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
