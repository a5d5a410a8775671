package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/transcript-quizgen/internal/store"
)

// Service is a tiny façade over the record store that produces XLSX bytes
// for status reports.
type Service struct {
	records store.RecordStore
	logger  *slog.Logger
}

func NewService(records store.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportWorkItemsXLSX returns an XLSX workbook (as bytes) listing every
// tracked document and its conversion state.
func (s *Service) ExportWorkItemsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	items, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Work Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document ID",
		"Title",
		"Status",
		"Step",
		"Percent",
		"Questions",
		"Form URL",
		"Error",
		"Updated At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, item := range items {
		values := []any{
			item.ID,
			item.Title,
			string(item.Status),
			string(item.Progress.Step),
			item.Progress.Percent,
			item.QuestionCount,
			item.FormURL,
			item.ErrorMessage,
			item.UpdatedAt.UTC().Format(time.RFC3339),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	// Drop the default sheet excelize creates.
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.work_items.ok",
		"rows", row-2,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
