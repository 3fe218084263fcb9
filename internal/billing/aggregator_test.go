package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func calc(lines []Line) []LineResult {
	results := make([]LineResult, 0, len(lines))
	for _, l := range lines {
		results = append(results, CalculateLine(l, Options{}))
	}
	return results
}

func TestAggregateSingleLine(t *testing.T) {
	totals := Aggregate(calc([]Line{
		{Rate: 100, Quantity: 2, TaxType: TaxExclusive, GSTRate: 18},
	}), 0)

	assert.Equal(t, 200.0, totals.TotalTaxableValue)
	assert.Equal(t, 36.0, totals.TotalGST)
	assert.Equal(t, 18.0, totals.TotalCGST)
	assert.Equal(t, 18.0, totals.TotalSGST)
	assert.Equal(t, 236.0, totals.GrossAmount)
	assert.Equal(t, 236.0, totals.GrandTotal)
	assert.Equal(t, 0.0, totals.RoundOff)
	assert.Equal(t, "Two Hundred and Thirty Six Rupees Only", totals.AmountInWords)
}

func TestAggregateSumsAreOrderIndependent(t *testing.T) {
	lines := []Line{
		{Rate: 33.33, Quantity: 3, TaxType: TaxExclusive, GSTRate: 12},
		{Rate: 150, Quantity: 1, Discount: 10, TaxType: TaxExclusive, GSTRate: 5},
		{Rate: 20, Quantity: 7, TaxType: TaxInclusive, GSTRate: 18},
	}
	reversed := []Line{lines[2], lines[1], lines[0]}

	a := Aggregate(calc(lines), 0)
	b := Aggregate(calc(reversed), 0)

	assert.InDelta(t, a.TotalTaxableValue, b.TotalTaxableValue, 1e-9)
	assert.InDelta(t, a.TotalGST, b.TotalGST, 1e-9)
	assert.InDelta(t, a.GrandTotal, b.GrandTotal, 1e-9)
}

func TestAggregateBillDiscount(t *testing.T) {
	totals := Aggregate(calc([]Line{
		{Rate: 100, Quantity: 1, TaxType: TaxExclusive, GSTRate: 0},
	}), 30)

	assert.Equal(t, 70.0, totals.GrossAmount)
	assert.Equal(t, 70.0, totals.GrandTotal)
	assert.Equal(t, 30.0, totals.BillDiscount)
}

func TestAggregateBillDiscountClampsAtZero(t *testing.T) {
	totals := Aggregate(calc([]Line{
		{Rate: 10, Quantity: 1, TaxType: TaxExclusive, GSTRate: 0},
	}), 500)

	assert.Equal(t, 0.0, totals.GrossAmount)
	assert.Equal(t, 0.0, totals.GrandTotal)
	assert.Equal(t, 0.0, totals.RoundOff)
	assert.Equal(t, "Zero Rupees Only", totals.AmountInWords)
}

func TestAggregateRoundingHalfAwayFromZero(t *testing.T) {
	// 100.50 gross must round up to 101 under the documented rule.
	totals := Aggregate(calc([]Line{
		{Rate: 100.50, Quantity: 1, TaxType: TaxExclusive, GSTRate: 0},
	}), 0)

	assert.Equal(t, 100.5, totals.GrossAmount)
	assert.Equal(t, 101.0, totals.GrandTotal)
	assert.InDelta(t, 0.5, totals.RoundOff, 1e-9)
}

func TestAggregateRoundingDown(t *testing.T) {
	totals := Aggregate(calc([]Line{
		{Rate: 99.40, Quantity: 1, TaxType: TaxExclusive, GSTRate: 0},
	}), 0)

	assert.Equal(t, 99.0, totals.GrandTotal)
	assert.InDelta(t, -0.4, totals.RoundOff, 1e-9)
	// grandTotal - roundOff reconstructs the gross exactly.
	assert.InDelta(t, totals.GrossAmount, totals.GrandTotal-totals.RoundOff, 1e-9)
}

func TestAggregateMixedCart(t *testing.T) {
	totals := Aggregate(calc([]Line{
		{Rate: 250, Quantity: 2, Discount: 50, TaxType: TaxExclusive, GSTRate: 18}, // taxable 450, gst 81
		{Rate: 60, Quantity: 1, TaxType: TaxInclusive, GSTRate: 12},                // taxable 60, gst 0
	}), 11)

	assert.InDelta(t, 510.0, totals.TotalTaxableValue, 1e-9)
	assert.InDelta(t, 81.0, totals.TotalGST, 1e-9)
	assert.InDelta(t, 580.0, totals.GrossAmount, 1e-9)
	assert.Equal(t, 580.0, totals.GrandTotal)
	assert.Equal(t, "Five Hundred and Eighty Rupees Only", totals.AmountInWords)
}

func TestAggregateEmptyCart(t *testing.T) {
	totals := Aggregate(nil, 0)

	assert.Equal(t, 0.0, totals.GrandTotal)
	assert.Equal(t, "Zero Rupees Only", totals.AmountInWords)
}
