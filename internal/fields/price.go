package fields

import "regexp"

var (
	reCurrencyAmount = regexp.MustCompile(`([$£€]\s?\d+(?:\.\d{2})?)`)
	reBareAmount     = regexp.MustCompile(`\b(\d{1,3}\.\d{2})\b`)
)

// ExtractPrice finds the admission price: a labeled total/price line, then
// any currency-marked amount, then a bare decimal amount as a last resort.
var ExtractPrice = FirstMatch(
	Validated(labeledValue("total", "price", "amount", "admission"), looksLikePrice),
	regexCapture(reCurrencyAmount),
	regexCapture(reBareAmount),
)

func looksLikePrice(s string) bool {
	return reCurrencyAmount.MatchString(s) || reBareAmount.MatchString(s)
}
