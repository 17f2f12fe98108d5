package ticket

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/google/uuid"
)

func confirmedBooking() *domain.Booking {
	dep := time.Date(2026, 9, 5, 6, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:        uuid.MustParse("3f6f9a5e-0000-4000-8000-000000000001"),
		UserName:  "Asha Rao",
		UserEmail: "asha@example.com",
		BusDetails: domain.BusSnapshot{
			ID:        "BUS-001",
			Name:      "Express Travels",
			From:      "Chennai",
			To:        "Bangalore",
			Departure: dep,
			Arrival:   dep.Add(6 * time.Hour),
			Operator:  "Express Travels",
			BusNumber: "TN01AB1234",
		},
		Seats: []string{"1A", "1B"},
		Payment: domain.Payment{
			TotalAmount: 900,
			Discount:    180,
			FinalAmount: 720,
			Method:      "Online",
			Status:      "Completed",
		},
		Status:    domain.BookingConfirmed,
		CreatedAt: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderHTMLContainsBookingDetails(t *testing.T) {
	b := confirmedBooking()

	out, err := RenderHTML(b)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	html := string(out)
	for _, want := range []string{
		b.ID.String(),
		"Asha Rao",
		"Chennai",
		"Bangalore",
		"1A, 1B",
		"720",
		"Completed",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered ticket missing %q", want)
		}
	}

	if strings.Contains(html, "delay-banner") {
		t.Fatal("delay banner must be absent for an on-time bus")
	}
}

func TestRenderHTMLDelayBanner(t *testing.T) {
	b := confirmedBooking()
	b.BusDetails.Delay = &domain.DelayInfo{Minutes: 45, Reason: "Heavy traffic"}

	out, err := RenderHTML(b)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	html := string(out)
	if !strings.Contains(html, "45 min") || !strings.Contains(html, "Heavy traffic") {
		t.Fatal("delay banner missing delay details")
	}
}

func TestRenderHTMLDeterministic(t *testing.T) {
	b := confirmedBooking()

	a, err := RenderHTML(b)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	c, err := RenderHTML(b)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	if !bytes.Equal(a, c) {
		t.Fatal("rendering the same booking twice must yield identical output")
	}
}

func TestFilenames(t *testing.T) {
	b := confirmedBooking()

	if got, want := HTMLFilename(b), "BookMySeat_Ticket_"+b.ID.String()+".html"; got != want {
		t.Fatalf("HTMLFilename = %q, want %q", got, want)
	}
	if got, want := PDFFilename(b), "BookMySeat_Ticket_"+b.ID.String()+".pdf"; got != want {
		t.Fatalf("PDFFilename = %q, want %q", got, want)
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	out, err := RenderPDF(confirmedBooking())
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF document")
	}
}
