package billing

import (
	"math"
	"strings"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// spellBelowThousand renders 1..999 in words, with the "Hundred and" join
// used on Indian invoices ("Four Hundred and Fifty Six").
func spellBelowThousand(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		s := tensWords[n/10]
		if n%10 != 0 {
			s += " " + onesWords[n%10]
		}
		return s
	default:
		s := onesWords[n/100] + " Hundred"
		if n%100 != 0 {
			s += " and " + spellBelowThousand(n%100)
		}
		return s
	}
}

// spellGroups renders a positive integer in Indian-numbering phrase form:
// crore / lakh / thousand groupings, two digits per group above the first
// three. The crore count recurses, so a thousand crore comes out as
// "One Thousand Crore" rather than indexing past the word tables.
func spellGroups(n int64) string {
	var parts []string
	if crore := n / 10000000; crore > 0 {
		parts = append(parts, spellGroups(crore), "Crore")
	}
	if lakh := (n % 10000000) / 100000; lakh > 0 {
		parts = append(parts, spellBelowThousand(lakh), "Lakh")
	}
	if thousand := (n % 100000) / 1000; thousand > 0 {
		parts = append(parts, spellBelowThousand(thousand), "Thousand")
	}
	if rest := n % 1000; rest > 0 {
		parts = append(parts, spellBelowThousand(rest))
	}
	return strings.Join(parts, " ")
}

// SpellOut converts a rupee amount into its Indian-numbering phrase,
// terminated with "Rupees Only". Fractions are dropped; the grand total
// handed in is already a whole rupee figure.
func SpellOut(amount float64) string {
	n := int64(math.Floor(amount))
	if n == 0 {
		return "Zero Rupees Only"
	}
	return spellGroups(n) + " Rupees Only"
}
