package report

import (
	"strings"

	"github.com/invoxa/invoxa/internal/money"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// twoDigits renders 0..99.
func twoDigits(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}

// threeDigits renders 0..999.
func threeDigits(n int64) string {
	if n < 100 {
		return twoDigits(n)
	}
	out := onesWords[n/100] + " Hundred"
	if rest := n % 100; rest != 0 {
		out += " " + twoDigits(rest)
	}
	return out
}

// numberWords renders a non-negative integer in the Indian system: groups
// of crore, lakh, thousand and hundreds.
func numberWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	var parts []string
	if crore := n / 10000000; crore > 0 {
		parts = append(parts, numberWords(crore)+" Crore")
		n %= 10000000
	}
	if lakh := n / 100000; lakh > 0 {
		parts = append(parts, twoDigits(lakh)+" Lakh")
		n %= 100000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, twoDigits(thousand)+" Thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, threeDigits(n))
	}
	return strings.Join(parts, " ")
}

// AmountInWords spells an amount the way Indian invoices print it, for
// example "One Lakh Twenty Three Thousand Four Hundred Fifty Six Rupees
// and Seventy Eight Paise Only".
func AmountInWords(a money.Amount) string {
	if a < 0 {
		a = -a
	}
	rupees := int64(a) / 100
	paise := int64(a) % 100

	out := numberWords(rupees) + " Rupees"
	if paise > 0 {
		out += " and " + twoDigits(paise) + " Paise"
	}
	return out + " Only"
}
