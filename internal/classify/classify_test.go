package classify

import (
	"testing"

	"mailledger/internal/core"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.Category
	}{
		{"revenue report", "Q3 Revenue Report", core.Revenue},
		{"sales keyword", "Monthly SALES figures", core.Revenue},
		{"expense keyword", "Travel expense reimbursement", core.Expenses},
		{"payment beats loan", "Loan payment due", core.Expenses},
		{"income beats loan", "Loan income statement", core.Revenue},
		{"asset keyword", "New equipment delivery", core.Assets},
		{"inventory keyword", "Inventory count results", core.Assets},
		{"liability keyword", "Outstanding debt notice", core.Liabilities},
		{"loan alone", "Loan agreement attached", core.Liabilities},
		{"equity keyword", "Capital raise update", core.Equity},
		{"investment keyword", "Investment round closing", core.Equity},
		{"no match", "Office chair", core.Uncategorized},
		{"empty", "", core.Uncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.in); got != tt.want {
				t.Errorf("Categorize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategorizeIsPure(t *testing.T) {
	in := "Quarterly revenue and cost summary"
	first := Categorize(in)
	for i := 0; i < 5; i++ {
		if got := Categorize(in); got != first {
			t.Fatalf("Categorize changed its answer on call %d: %v vs %v", i, got, first)
		}
	}
}
