package payroll

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var summaryHeader = []string{"Staff", "Role", "Standard Rate", "Enhanced Rate", "Night Rate", "Hours", "Total Pay", "Notes"}

var weekHeader = []string{"Week", "Date", "Type", "Start", "End", "Category", "Hours", "Standard h", "Enhanced h", "Night h", "Cost", "Note"}

// renderWorkbook writes the report as a summary sheet plus one sheet per staff member.
func renderWorkbook(report payroll.PeriodReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// Summary sheet
	f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Payroll %s to %s", report.Period.Start, report.Period.End))
	f.SetCellValue(summarySheet, "A2", "Run "+report.RunID)
	writeRow(f, summarySheet, 4, summaryHeader)
	f.SetCellStyle(summarySheet, cell("A", 4), cell(colName(len(summaryHeader)-1), 4), headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "H", "H", 60)

	row := 5
	for _, s := range report.StaffSummary {
		writeRow(f, summarySheet, row, []interface{}{
			s.StaffName,
			s.Role,
			s.RawRates.Resolved.Standard.InexactFloat64(),
			s.RawRates.Resolved.Enhanced.InexactFloat64(),
			s.RawRates.Resolved.Night.InexactFloat64(),
			round2(s.TotalHours),
			s.TotalPay.Round(2).InexactFloat64(),
			strings.Join(s.Notes, "; "),
		})
		row++
	}
	row++
	writeRow(f, summarySheet, row, []interface{}{"Total", "", "", "", "", round2(report.TotalHours), report.TotalPay.Round(2).InexactFloat64()})
	if report.Unattributed.ShiftCount > 0 {
		row++
		writeRow(f, summarySheet, row, []interface{}{
			"Unattributed", fmt.Sprintf("%d shifts", report.Unattributed.ShiftCount), "", "", "",
			round2(report.Unattributed.Hours), "", strings.Join(report.Unattributed.ShiftIDs, ", "),
		})
	}

	// One sheet per staff member
	used := map[string]bool{summarySheet: true}
	for _, s := range report.StaffSummary {
		name := sheetName(s.StaffName, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		writeRow(f, name, 1, weekHeader)
		f.SetCellStyle(name, "A1", cell(colName(len(weekHeader)-1), 1), headerStyle)

		r := 2
		for _, w := range s.Weeks {
			for _, l := range w.Lines {
				writeRow(f, name, r, []interface{}{
					w.WeekStart, l.Date, l.Type, l.StartTime, l.EndTime, string(l.Category),
					round2(l.Hours), round2(l.StandardHours), round2(l.EnhancedHours), round2(l.NightHours),
					l.Cost.Round(2).InexactFloat64(), l.Note,
				})
				r++
			}
			writeRow(f, name, r, []interface{}{
				w.WeekStart, "Week total", "", "", "", "",
				round2(w.TotalHours()), round2(w.StandardHours), round2(w.EnhancedHours), round2(w.NightHours),
				w.TotalPay.Round(2).InexactFloat64(), strings.Join(w.Notes, "; "),
			})
			r += 2
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

// sheetName makes a valid, unique worksheet name from a staff name.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Staff"
	}
	runes := []rune(clean)
	if len(runes) > 28 {
		runes = runes[:28]
	}
	base := string(runes)

	candidate := base
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s %d", base, i)
	}
	used[candidate] = true
	return candidate
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
