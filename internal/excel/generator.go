package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/finishing-touch/internal/model"
)

const timesheetSheet = "Timesheet"

type Generator struct {
	loc *time.Location
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc}
}

// Timesheet writes one row per entry followed by a total row.
func (g *Generator) Timesheet(sheet model.Timesheet) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", timesheetSheet); err != nil {
		return nil, err
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(timesheetSheet, cell, value)
	}

	set("A1", "Employee")
	set("B1", sheet.Employee.Name)
	set("A2", "Role")
	set("B2", string(sheet.Employee.Role))
	set("A3", "From")
	set("B3", g.formatOptionalDate(sheet.From))
	set("A4", "To")
	set("B4", g.formatOptionalDate(sheet.To))

	tableRow := 6
	headers := []string{"Date", "Clock in", "Clock out", "Minutes", "Hours"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, entry := range sheet.Entries {
		row := tableRow + 1 + i
		clockIn := entry.ClockIn.In(g.loc)
		set(fmt.Sprintf("A%d", row), clockIn.Format("2006-01-02"))
		set(fmt.Sprintf("B%d", row), clockIn.Format("15:04"))
		if entry.ClockOut != nil {
			set(fmt.Sprintf("C%d", row), entry.ClockOut.In(g.loc).Format("2006-01-02 15:04"))
		} else {
			set(fmt.Sprintf("C%d", row), "open")
		}
		if entry.DurationMinutes != nil {
			set(fmt.Sprintf("D%d", row), *entry.DurationMinutes)
			set(fmt.Sprintf("E%d", row), formatHours(*entry.DurationMinutes))
		}
	}

	totalRow := tableRow + 1 + len(sheet.Entries)
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("D%d", totalRow), sheet.TotalMinutes)
	set(fmt.Sprintf("E%d", totalRow), formatHours(sheet.TotalMinutes))

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = file.SetCellStyle(timesheetSheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("E%d", tableRow), style)
		_ = file.SetCellStyle(timesheetSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("E%d", totalRow), style)
	}

	_ = file.SetColWidth(timesheetSheet, "A", "A", 16)
	_ = file.SetColWidth(timesheetSheet, "B", "B", 24)
	_ = file.SetColWidth(timesheetSheet, "C", "C", 20)
	_ = file.SetColWidth(timesheetSheet, "D", "E", 12)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) formatOptionalDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(g.loc).Format("2006-01-02")
}

func formatHours(minutes int64) string {
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}
