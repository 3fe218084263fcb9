package billing

import (
	"regexp"
	"strconv"
)

// Tax type values carried on item prices and cart lines.
const (
	TaxInclusive = "inclusive"
	TaxExclusive = "exclusive"
)

// Line is one cart entry as captured at add-to-cart time. Rate, tax type and
// GST rate are snapshots of the catalog item; later price edits must not
// affect an open cart.
type Line struct {
	Rate     float64
	Quantity float64
	Discount float64
	TaxType  string
	GSTRate  float64
}

// LineResult is a Line enriched with its tax-resolved amounts.
type LineResult struct {
	Line
	TaxableAmount float64
	GSTAmount     float64
	CGSTAmount    float64
	SGSTAmount    float64
	IGSTAmount    float64
	NetAmount     float64
}

// Options controls calculator policy knobs.
type Options struct {
	// BackComputeInclusiveTax derives the GST embedded in a tax-inclusive
	// price (taxable = gross * 100 / (100 + rate)) so the CGST/SGST split
	// appears on the invoice. Off by default: inclusive lines report zero
	// GST and the full gross as taxable, matching the shipped behavior.
	// Flip only after confirming with the accounts owner, since it changes
	// the legal tax breakdown on printed invoices.
	BackComputeInclusiveTax bool
}

// CalculateLine maps one cart line to its tax-resolved form. Pure function:
// no side effects, no errors. Malformed numeric input must be rejected
// upstream at the settlement boundary.
//
// The item-wise discount applies before tax and is clamped so the taxable
// value never goes negative. GST is only added on top for exclusive pricing;
// intra-state sales split it evenly into CGST and SGST, IGST stays zero.
func CalculateLine(line Line, opts Options) LineResult {
	baseValue := line.Rate * line.Quantity

	taxableAmount := baseValue - line.Discount
	if taxableAmount < 0 {
		taxableAmount = 0
	}

	var gstAmount float64
	switch line.TaxType {
	case TaxExclusive:
		gstAmount = taxableAmount * line.GSTRate / 100
	case TaxInclusive:
		if opts.BackComputeInclusiveTax && line.GSTRate > 0 {
			net := taxableAmount
			taxableAmount = net * 100 / (100 + line.GSTRate)
			gstAmount = net - taxableAmount
		}
	}

	return LineResult{
		Line:          line,
		TaxableAmount: taxableAmount,
		GSTAmount:     gstAmount,
		CGSTAmount:    gstAmount / 2,
		SGSTAmount:    gstAmount / 2,
		IGSTAmount:    0,
		NetAmount:     taxableAmount + gstAmount,
	}
}

var slabRatePattern = regexp.MustCompile(`@(\d+(\.\d+)?)%`)

// ParseSlabRate extracts the percentage from a GST slab string such as
// "GST@18%" or "GST@0.25%". Non-taxable markers ("Exempted", "None") and
// anything else without a rate yield 0.
func ParseSlabRate(slab string) float64 {
	m := slabRatePattern.FindStringSubmatch(slab)
	if m == nil {
		return 0
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return rate
}
