package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// PDFFilename follows the storefront's download pattern.
func PDFFilename(b *domain.Booking) string {
	return fmt.Sprintf("BookMySeat_Ticket_%s.pdf", b.ID)
}

// RenderPDF is the printable variant of the ticket.
func RenderPDF(b *domain.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("BookMySeat Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(211, 47, 47)
	pdf.Cell(0, 10, "BookMySeat - Booking Confirmation")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(0, 8, fmt.Sprintf("Booking ID: %s", b.ID))
	pdf.Ln(10)

	if d := b.BusDetails.Delay; d != nil && d.Minutes > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, fmt.Sprintf("DELAYED by %d min - %s", d.Minutes, d.Reason))
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
	}

	section := func(title string, lines []string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 9, title)
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range lines {
			pdf.Cell(0, 7, line)
			pdf.Ln(7)
		}
		pdf.Ln(4)
	}

	section("Passenger", []string{
		fmt.Sprintf("Name  : %s", b.UserName),
		fmt.Sprintf("Email : %s", b.UserEmail),
	})

	section("Travel", []string{
		fmt.Sprintf("Route     : %s -> %s", b.BusDetails.From, b.BusDetails.To),
		fmt.Sprintf("Date      : %s", b.BusDetails.Departure.Format("02 Jan 2006")),
		fmt.Sprintf("Departure : %s", b.BusDetails.Departure.Format("15:04")),
		fmt.Sprintf("Arrival   : %s", b.BusDetails.Arrival.Format("15:04")),
	})

	section("Bus", []string{
		fmt.Sprintf("Name     : %s", b.BusDetails.Name),
		fmt.Sprintf("Operator : %s", b.BusDetails.Operator),
		fmt.Sprintf("Number   : %s", b.BusDetails.BusNumber),
		fmt.Sprintf("Seats    : %s", strings.Join(b.Seats, ", ")),
	})

	section("Payment", []string{
		fmt.Sprintf("Total    : Rs %.0f", b.Payment.TotalAmount),
		fmt.Sprintf("Discount : Rs %.0f", b.Payment.Discount),
		fmt.Sprintf("Final    : Rs %.0f", b.Payment.FinalAmount),
		fmt.Sprintf("Status   : %s", b.Payment.Status),
	})

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 8, fmt.Sprintf("Booked on %s. Thank you for choosing BookMySeat!", b.CreatedAt.Format("02 Jan 2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ticket.RenderPDF: %w", err)
	}

	return buf.Bytes(), nil
}
