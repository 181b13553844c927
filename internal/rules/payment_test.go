package rules

import (
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSumPayments(t *testing.T) {
	payments := []model.Payment{
		{Amount: dec("535.00")},
		{Amount: dec("535.00")},
		{Amount: dec("100.00"), Voided: true},
		{Amount: dec("-35.00")}, // reversal
	}

	got := SumPayments(payments)
	if !got.Equal(dec("1035.00")) {
		t.Fatalf("sum = %s, want 1035.00", got)
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  string
		total string
		want  string
	}{
		{"zero paid", "0", "1070.00", model.PaymentStatusUnpaid},
		{"negative paid", "-10.00", "1070.00", model.PaymentStatusUnpaid},
		{"partial", "500.00", "1070.00", model.PaymentStatusPartial},
		{"one satang short is partial", "1069.99", "1070.00", model.PaymentStatusPartial},
		{"exact equality is paid", "1070.00", "1070.00", model.PaymentStatusPaid},
		{"trailing zeros still equal", "1070", "1070.00", model.PaymentStatusPaid},
		{"over by one satang", "1070.01", "1070.00", model.PaymentStatusOverpaid},
		{"double payment", "1200.00", "600.00", model.PaymentStatusOverpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(dec(tt.paid), dec(tt.total))
			if got != tt.want {
				t.Fatalf("DerivePaymentStatus(%s, %s) = %s, want %s", tt.paid, tt.total, got, tt.want)
			}
		})
	}
}

func TestOverpaidAmount(t *testing.T) {
	// Two 600 slips against a 1000 box: overpaid by exactly 200.
	paid := SumPayments([]model.Payment{{Amount: dec("600.00")}, {Amount: dec("600.00")}})
	total := dec("1000.00")

	if got := DerivePaymentStatus(paid, total); got != model.PaymentStatusOverpaid {
		t.Fatalf("status = %s, want %s", got, model.PaymentStatusOverpaid)
	}
	if got := OverpaidAmount(paid, total); !got.Equal(dec("200.00")) {
		t.Fatalf("overpaid = %s, want 200.00", got)
	}
	if got := OverpaidAmount(dec("500.00"), total); !got.IsZero() {
		t.Fatalf("underpaid box reported overpaid %s", got)
	}
}

func TestResolvePaymentAmount(t *testing.T) {
	explicit := dec("250.00")
	installment := dec("356.67")
	zeroInstallment := decimal.Zero

	tests := []struct {
		name        string
		explicit    *decimal.Decimal
		installment *decimal.Decimal
		total       string
		alreadyPaid string
		want        string
	}{
		{"explicit wins", &explicit, &installment, "1070.00", "0", "250.00"},
		{"installment when no explicit", nil, &installment, "1070.00", "0", "356.67"},
		{"zero installment falls through to shortfall", nil, &zeroInstallment, "1070.00", "70.00", "1000.00"},
		{"shortfall", nil, nil, "1070.00", "500.00", "570.00"},
		{"already fully paid resolves to zero", nil, nil, "1070.00", "1070.00", "0"},
		{"overpaid resolves negative", nil, nil, "1000.00", "1200.00", "-200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePaymentAmount(tt.explicit, tt.installment, dec(tt.total), dec(tt.alreadyPaid))
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("resolved = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	payments := []model.Payment{{Amount: dec("535.00")}, {Amount: dec("535.00")}}
	total := dec("1070.00")

	first := SumPayments(payments)
	second := SumPayments(payments)
	if !first.Equal(second) {
		t.Fatalf("re-sum diverged: %s vs %s", first, second)
	}
	if got := DerivePaymentStatus(second, total); got != model.PaymentStatusPaid {
		t.Fatalf("status = %s, want %s", got, model.PaymentStatusPaid)
	}
}
