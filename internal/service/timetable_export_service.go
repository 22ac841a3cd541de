package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
	"github.com/noah-isme/dept-timetable-api/pkg/export"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"

	lunchLabel = "LUNCH"
)

type timetableViewSource interface {
	Grid(ctx context.Context, id string) (*dto.GridResponse, error)
	TeacherSchedule(ctx context.Context, teacherName string) (*dto.TeacherScheduleResponse, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// TimetableExportService renders timetable grids as CSV or PDF downloads.
type TimetableExportService struct {
	views  timetableViewSource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewTimetableExportService constructs a TimetableExportService.
func NewTimetableExportService(views timetableViewSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *TimetableExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &TimetableExportService{views: views, csv: csv, pdf: pdf, logger: logger}
}

// ExportTimetable renders the grid of one class timetable.
func (s *TimetableExportService) ExportTimetable(ctx context.Context, id, format string) (*ExportFile, error) {
	grid, err := s.views.Grid(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(grid, format, "timetable_"+sanitizeFilename(grid.Title))
}

// ExportTeacherSchedule renders the personal grid of one teacher.
func (s *TimetableExportService) ExportTeacherSchedule(ctx context.Context, teacherName, format string) (*ExportFile, error) {
	schedule, err := s.views.TeacherSchedule(ctx, teacherName)
	if err != nil {
		return nil, err
	}
	return s.render(schedule.Grid, format, "teacher_"+sanitizeFilename(schedule.TeacherName))
}

func (s *TimetableExportService) render(grid *dto.GridResponse, format, basename string) (*ExportFile, error) {
	if grid == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "nothing to export")
	}
	if format == "" {
		format = ExportFormatCSV
	}
	dataset := gridDataset(grid)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, grid.Title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", basename, timestamp, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func sanitizeFilename(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(strings.TrimSpace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// buildGridResponse lays entries out on the weekly grid. label names head cells.
func buildGridResponse(title string, entries []models.Entry, lunchSlotIndex *int, label func(models.Entry) string) *dto.GridResponse {
	cells := scheduler.BuildGrid(entries)
	resp := &dto.GridResponse{
		Title:          title,
		Days:           append([]models.Weekday(nil), scheduler.Days...),
		LunchSlotIndex: lunchSlotIndex,
		Rows:           make([]dto.GridRow, 0, scheduler.SlotCount),
	}
	for slot := 0; slot < scheduler.SlotCount; slot++ {
		row := dto.GridRow{SlotIndex: slot, Label: scheduler.SlotLabels[slot], Cells: make([]dto.GridCell, 0, len(scheduler.Days))}
		for _, day := range scheduler.Days {
			cell := dto.GridCell{Day: day}
			if lunchSlotIndex != nil && *lunchSlotIndex == slot {
				cell.Lunch = true
				cell.Label = lunchLabel
			}
			if occupied, ok := cells[scheduler.GridKey{Day: day, Slot: slot}]; ok {
				entry := occupied.Entry
				cell.Entry = &entry
				cell.Head = occupied.IsHead
				cell.Continuation = occupied.IsContinuation
				cell.Label = label(entry)
				if occupied.IsContinuation {
					cell.Label += " (cont.)"
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

func gridDataset(grid *dto.GridResponse) export.Dataset {
	headers := make([]string, 0, len(grid.Days)+1)
	headers = append(headers, "Time")
	for _, day := range grid.Days {
		headers = append(headers, string(day))
	}
	rows := make([]map[string]string, 0, len(grid.Rows))
	for _, gridRow := range grid.Rows {
		row := map[string]string{"Time": gridRow.Label}
		for _, cell := range gridRow.Cells {
			row[string(cell.Day)] = cell.Label
		}
		rows = append(rows, row)
	}
	var notes []string
	if grid.LunchSlotIndex != nil {
		notes = append(notes, "Lunch: "+scheduler.SlotLabels[*grid.LunchSlotIndex])
	}
	return export.Dataset{Headers: headers, Rows: rows, Notes: notes}
}
