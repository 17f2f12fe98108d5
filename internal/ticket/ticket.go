// Package ticket renders a confirmed booking into a downloadable document.
// Rendering is pure: same booking, same output.
package ticket

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/bookmyseat/bms-go/internal/domain"
)

// HTMLFilename follows the storefront's download pattern.
func HTMLFilename(b *domain.Booking) string {
	return fmt.Sprintf("BookMySeat_Ticket_%s.html", b.ID)
}

var ticketTmpl = template.Must(template.New("ticket").Parse(ticketHTML))

type ticketData struct {
	Booking *domain.Booking
	Seats   string
	Delayed bool
}

// RenderHTML produces a self-contained HTML document with inline styling,
// suitable for saving or printing. A delay banner is included when the
// bus-details snapshot carries a delay.
func RenderHTML(b *domain.Booking) ([]byte, error) {
	data := ticketData{
		Booking: b,
		Seats:   strings.Join(b.Seats, ", "),
		Delayed: b.BusDetails.Delay != nil && b.BusDetails.Delay.Minutes > 0,
	}

	var buf bytes.Buffer
	if err := ticketTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("ticket.RenderHTML: %w", err)
	}

	return buf.Bytes(), nil
}

const ticketHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; margin: 0 auto; padding: 20px; max-width: 600px; text-align: center; }
  .header { text-align: center; color: #d32f2f; margin-bottom: 30px; border-bottom: 2px solid #d32f2f; padding-bottom: 20px; }
  .booking-id { background: #d32f2f; color: white; padding: 10px 20px; border-radius: 20px; display: inline-block; margin: 10px 0; }
  .section { margin-bottom: 25px; background: #f9f9f9; padding: 15px; border-radius: 8px; }
  .section h3 { color: #d32f2f; margin-bottom: 15px; }
  .delay-banner { background: #fff3cd; color: #856404; border: 1px solid #ffeeba; padding: 12px; border-radius: 8px; margin-bottom: 25px; }
  .detail-row { display: flex; justify-content: space-between; margin: 8px 0; padding: 5px 0; }
  .label { font-weight: bold; color: #333; text-align: left; }
  .value { color: #666; text-align: right; }
  .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; border-top: 1px solid #ddd; padding-top: 20px; }
</style>
</head>
<body>
  <div class="header">
    <h1>BookMySeat</h1>
    <h2>BOOKING CONFIRMATION</h2>
    <div class="booking-id">Booking ID: {{.Booking.ID}}</div>
  </div>
{{if .Delayed}}
  <div class="delay-banner">
    Bus delayed by {{.Booking.BusDetails.Delay.Minutes}} min &mdash; {{.Booking.BusDetails.Delay.Reason}}
  </div>
{{end}}
  <div class="section">
    <h3>PASSENGER DETAILS</h3>
    <div class="detail-row"><span class="label">Name:</span><span class="value">{{.Booking.UserName}}</span></div>
    <div class="detail-row"><span class="label">Email:</span><span class="value">{{.Booking.UserEmail}}</span></div>
  </div>
  <div class="section">
    <h3>TRAVEL DETAILS</h3>
    <div class="detail-row"><span class="label">Route:</span><span class="value">{{.Booking.BusDetails.From}} &rarr; {{.Booking.BusDetails.To}}</span></div>
    <div class="detail-row"><span class="label">Date:</span><span class="value">{{.Booking.BusDetails.Departure.Format "02 Jan 2006"}}</span></div>
    <div class="detail-row"><span class="label">Departure:</span><span class="value">{{.Booking.BusDetails.Departure.Format "15:04"}}</span></div>
    <div class="detail-row"><span class="label">Arrival:</span><span class="value">{{.Booking.BusDetails.Arrival.Format "15:04"}}</span></div>
  </div>
  <div class="section">
    <h3>BUS DETAILS</h3>
    <div class="detail-row"><span class="label">Bus Name:</span><span class="value">{{.Booking.BusDetails.Name}}</span></div>
    <div class="detail-row"><span class="label">Operator:</span><span class="value">{{.Booking.BusDetails.Operator}}</span></div>
    <div class="detail-row"><span class="label">Bus Number:</span><span class="value">{{.Booking.BusDetails.BusNumber}}</span></div>
    <div class="detail-row"><span class="label">Seats:</span><span class="value">{{.Seats}}</span></div>
  </div>
  <div class="section">
    <h3>PAYMENT DETAILS</h3>
    <div class="detail-row"><span class="label">Total Amount:</span><span class="value">₹{{printf "%.0f" .Booking.Payment.TotalAmount}}</span></div>
    <div class="detail-row"><span class="label">Discount:</span><span class="value">₹{{printf "%.0f" .Booking.Payment.Discount}}</span></div>
    <div class="detail-row"><span class="label">Final Amount:</span><span class="value">₹{{printf "%.0f" .Booking.Payment.FinalAmount}}</span></div>
    <div class="detail-row"><span class="label">Payment Status:</span><span class="value">{{.Booking.Payment.Status}}</span></div>
  </div>
  <div class="footer">
    <p><strong>Booked on:</strong> {{.Booking.CreatedAt.Format "02 Jan 2006 15:04"}}</p>
    <p>Thank you for choosing BookMySeat!</p>
    <p>For support: support@bookmyseat.com</p>
  </div>
</body>
</html>
`
