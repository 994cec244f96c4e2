package entities

// CardBrand is the card network detected from the card number.
type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandUnknown    CardBrand = "unknown"
)

// IsSupported reports whether payments can be validated for this brand.
func (b CardBrand) IsSupported() bool {
	return b == CardBrandVisa || b == CardBrandMastercard
}

// CardNumberCheck is the card number sub-result.
type CardNumberCheck struct {
	Valid bool      `json:"valid"`
	Brand CardBrand `json:"brand"`
	Error *string   `json:"error"`
}

// FieldCheck is the expiry date and CVV sub-result.
type FieldCheck struct {
	Valid bool    `json:"valid"`
	Error *string `json:"error"`
}

// OverallCheck aggregates the three sub-results.
type OverallCheck struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationResult is the snapshot produced when card data is validated.
//
// It is embedded in the payment record at creation and never changed after.
// Overall.Errors holds the non-nil sub-result errors in the order
// card number, expiry date, CVV.
type ValidationResult struct {
	CardNumber CardNumberCheck `json:"cardNumber"`
	ExpiryDate FieldCheck      `json:"expiryDate"`
	CVV        FieldCheck      `json:"cvv"`
	Overall    OverallCheck    `json:"overall"`
}
