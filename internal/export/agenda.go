package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"eclat/internal/models"
	"eclat/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Agenda"

// AppointmentSource is the slice of the store the exporter needs.
type AppointmentSource interface {
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
}

// AgendaExporter builds an xlsx agenda grid: one column per day, one row per
// slot of the booking grid.
type AgendaExporter struct {
	store  AppointmentSource
	grid   *schedule.Grid
	logger *zerolog.Logger
}

func NewAgendaExporter(store AppointmentSource, grid *schedule.Grid, logger *zerolog.Logger) *AgendaExporter {
	return &AgendaExporter{store: store, grid: grid, logger: logger}
}

// WriteAgenda renders appointments between startDate and endDate (inclusive)
// to the writer as an xlsx workbook.
func (e *AgendaExporter) WriteAgenda(ctx context.Context, w io.Writer, startDate, endDate time.Time) error {
	appointments, err := e.store.GetAppointmentsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to load appointments for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Période : %s - %s",
		startDate.Format("02/01/2006"), endDate.Format("02/01/2006")))

	dateColumns := e.writeDateHeaders(f, startDate, endDate)
	e.writeSlotHeaders(f)
	e.writeAppointments(f, appointments, dateColumns)

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	for col := 2; col <= len(dateColumns)+1; col++ {
		name, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(sheetName, name, name, 28)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateColumns) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info().
		Str("start", startDate.Format(models.DateLayout)).
		Str("end", endDate.Format(models.DateLayout)).
		Int("appointments", len(appointments)).
		Msg("agenda export written")
	return nil
}

func (e *AgendaExporter) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	col := 2
	dateColumns := make(map[string]int)
	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02/01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateColumns[current.Format(models.DateLayout)] = col
		col++
	}
	return dateColumns
}

func (e *AgendaExporter) writeSlotHeaders(f *excelize.File) {
	slotStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, slot := range e.grid.Slots() {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		_ = f.SetCellValue(sheetName, cell, slot)
		_ = f.SetCellStyle(sheetName, cell, cell, slotStyle)
	}
}

func (e *AgendaExporter) writeAppointments(f *excelize.File, appointments []*models.Appointment, dateColumns map[string]int) {
	slotRows := make(map[string]int)
	for i, slot := range e.grid.Slots() {
		slotRows[slot] = i + 3
	}

	for _, apt := range appointments {
		if apt.IsGiftCard {
			continue
		}
		col, ok := dateColumns[apt.DateKey()]
		if !ok {
			continue
		}
		row, ok := slotRows[apt.StartTime]
		if !ok {
			// Legacy off-grid time: append below the grid so it stays visible.
			row = len(slotRows) + 3
		}

		cell, _ := excelize.CoordinatesToCellName(col, row)
		value := fmt.Sprintf("%s\n%s\n%s", apt.ClientName, apt.ServiceName, apt.ClientPhone)
		if apt.Note != "" {
			value += "\n💬 " + apt.Note
		}
		_ = f.SetCellValue(sheetName, cell, value)
		if styleID, err := f.NewStyle(statusStyle(apt.Status)); err == nil {
			_ = f.SetCellStyle(sheetName, cell, cell, styleID)
		}
	}
}

func statusStyle(status string) *excelize.Style {
	fill := "#FFFFFF"
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		fill = "#C6EFCE"
	case models.StatusPending:
		fill = "#FFEB9C"
	case models.StatusCancelled:
		fill = "#FFC7CE"
	}
	return &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	}
}
