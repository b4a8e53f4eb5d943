package attendance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// MonthlyReportPDF renders an employee's attendance for one month. The
// caller streams the bytes straight into the HTTP response.
func (s *Service) MonthlyReportPDF(ctx context.Context, employeeID string, year int, month time.Month) ([]byte, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, -1)

	f := Filter{EmployeeID: employeeID, From: from, To: to}
	records, _, err := s.store.List(ctx, f, 31, 0)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.Stats(ctx, f)
	if err != nil {
		return nil, err
	}

	name := ""
	number := ""
	if len(records) > 0 {
		name = records[0].EmployeeName
		number = records[0].EmployeeNumber
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", name, number))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", from.Format("January 2006")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{25, 25, 25, 18, 22, 20, 22}
	headers := []string{"Date", "Check In", "Check Out", "Hours", "Status", "Late (m)", "Early (m)"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		checkOut := "-"
		if r.CheckOutTime != nil {
			checkOut = r.CheckOutTime.Format("15:04")
		}
		cells := []string{
			r.Day.Format("2006-01-02"),
			r.CheckInTime.Format("15:04"),
			checkOut,
			fmt.Sprintf("%.2f", r.TotalHours),
			r.Status,
			fmt.Sprintf("%d", r.LateByMinutes),
			fmt.Sprintf("%d", r.EarlyByMinutes),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 7, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Days present: %d   Late arrivals: %d   Early checkouts: %d",
		stats.PresentDays, stats.LateDays, stats.EarlyCheckouts))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total hours: %.2f   Average per day: %.2f", stats.TotalHours, stats.AverageHours))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
