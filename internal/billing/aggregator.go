package billing

import "math"

// Totals holds the bill-level settlement figures derived from the calculated
// lines plus the overall bill discount.
type Totals struct {
	Lines             []LineResult
	TotalTaxableValue float64
	TotalCGST         float64
	TotalSGST         float64
	TotalGST          float64
	BillDiscount      float64
	GrossAmount       float64
	RoundOff          float64
	GrandTotal        float64
	AmountInWords     string
}

// Aggregate folds the calculated lines and the bill-level discount into the
// final invoice figures. Lines are accumulated in input order so float
// rounding stays reproducible.
//
// The grand total is the gross rounded to the nearest whole rupee using
// math.Round, i.e. halves round away from zero (100.50 becomes 101). RoundOff
// is the delta the rounding introduced and appears on the printed invoice.
func Aggregate(lines []LineResult, billDiscount float64) Totals {
	var taxable, gst float64
	for _, line := range lines {
		taxable += line.TaxableAmount
		gst += line.GSTAmount
	}

	gross := taxable + gst - billDiscount
	if gross < 0 {
		gross = 0
	}

	grand := math.Round(gross)

	return Totals{
		Lines:             lines,
		TotalTaxableValue: taxable,
		TotalCGST:         gst / 2,
		TotalSGST:         gst / 2,
		TotalGST:          gst,
		BillDiscount:      billDiscount,
		GrossAmount:       gross,
		RoundOff:          grand - gross,
		GrandTotal:        grand,
		AmountInWords:     SpellOut(grand),
	}
}
