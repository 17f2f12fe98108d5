package reservation

import "testing"

func TestBuildPayment(t *testing.T) {
	p := BuildPayment(500, 50, "Online")

	if p.TotalAmount != 500 || p.Discount != 50 || p.FinalAmount != 450 {
		t.Fatalf("unexpected breakdown: %+v", p)
	}
	if p.Method != "Online" || p.Status != "Completed" {
		t.Fatalf("unexpected method/status: %+v", p)
	}
}

func TestBuildPaymentClampsAtZero(t *testing.T) {
	p := BuildPayment(100, 150, "")

	if p.FinalAmount != 0 {
		t.Fatalf("final amount = %v, want 0", p.FinalAmount)
	}
	if p.Method != "Online" {
		t.Fatalf("method = %q, want default Online", p.Method)
	}
}

func TestIntersect(t *testing.T) {
	got := intersect([]string{"1A", "2B", "3C"}, []string{"2B", "4D", "1A"})

	want := []string{"2B", "1A"}
	if len(got) != len(want) {
		t.Fatalf("intersect = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("intersect = %v, want %v", got, want)
		}
	}
}
