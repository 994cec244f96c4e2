// Package cardvalidation holds the structural checks run on card data before
// a payment record is created. Every function is pure and safe for
// concurrent use.
package cardvalidation

import (
	"strconv"
	"strings"
	"time"

	"payment_service/internal/domain/entities"
)

const (
	ErrCardNumberRequired  = "Card number is required"
	ErrCardNumberLength    = "Invalid card number length"
	ErrCardBrandUnknown    = "Card brand not supported. Only Visa and Mastercard are supported."
	ErrCardNumberLuhn      = "Invalid card number (failed Luhn check)"
	ErrExpiryRequired      = "Expiry month and year are required"
	ErrExpiryMonth         = "Invalid month. Must be between 1 and 12"
	ErrCardExpired         = "Card has expired"
	ErrExpiryYear          = "Invalid expiry year"
	ErrCVVRequired         = "CVV is required"
	ErrCVVLengthKnownBrand = "CVV must be 3 digits for Visa/Mastercard"
	ErrCVVLength           = "CVV must be 3 or 4 digits"
	ErrCVVWithoutCard      = "Cannot validate CVV without valid card number"
)

const (
	minCardDigits       = 13
	maxCardDigits       = 19
	maxExpiryYearsAhead = 20
)

// Input is the raw card data submitted with a payment.
type Input struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// Digits strips every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectBrand returns the card network for cardNumber.
//
// Visa is checked before Mastercard.
func DetectBrand(cardNumber string) entities.CardBrand {
	digits := Digits(cardNumber)

	if strings.HasPrefix(digits, "4") && (len(digits) == 13 || len(digits) == 16) {
		return entities.CardBrandVisa
	}

	if len(digits) == 16 {
		firstTwo, _ := strconv.Atoi(digits[:2])
		firstFour, _ := strconv.Atoi(digits[:4])
		if (firstTwo >= 51 && firstTwo <= 55) || (firstFour >= 2221 && firstFour <= 2720) {
			return entities.CardBrandMastercard
		}
	}

	return entities.CardBrandUnknown
}

// Luhn runs the mod-10 checksum over the digits of cardNumber.
// An input without digits never passes.
func Luhn(cardNumber string) bool {
	digits := Digits(cardNumber)
	if len(digits) == 0 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// CardNumberResult is the outcome of ValidateCardNumber.
type CardNumberResult struct {
	Valid bool
	Brand entities.CardBrand
	Error string
}

// ValidateCardNumber checks length, brand and checksum, in that order.
// The first failing check short-circuits the rest.
func ValidateCardNumber(raw string) CardNumberResult {
	if raw == "" {
		return CardNumberResult{Brand: entities.CardBrandUnknown, Error: ErrCardNumberRequired}
	}

	digits := Digits(raw)
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return CardNumberResult{Brand: entities.CardBrandUnknown, Error: ErrCardNumberLength}
	}

	brand := DetectBrand(digits)
	if !brand.IsSupported() {
		return CardNumberResult{Brand: entities.CardBrandUnknown, Error: ErrCardBrandUnknown}
	}

	if !Luhn(digits) {
		return CardNumberResult{Brand: brand, Error: ErrCardNumberLuhn}
	}

	return CardNumberResult{Valid: true, Brand: brand}
}

// FieldResult is the outcome of ValidateExpiryDate and ValidateCVV.
type FieldResult struct {
	Valid bool
	Error string
}

// ValidateExpiryDate checks month/year against the current date.
func ValidateExpiryDate(month, year int) FieldResult {
	return ValidateExpiryDateAt(month, year, time.Now())
}

// ValidateExpiryDateAt checks month/year against now.
//
// Two-digit years are read as 20YY. A card expiring in the current month is
// still valid.
func ValidateExpiryDateAt(month, year int, now time.Time) FieldResult {
	if month == 0 || year == 0 {
		return FieldResult{Error: ErrExpiryRequired}
	}
	if month < 1 || month > 12 {
		return FieldResult{Error: ErrExpiryMonth}
	}

	fullYear := year
	if year < 100 {
		fullYear = 2000 + year
	}

	currentYear := now.Year()
	currentMonth := int(now.Month())

	if fullYear < currentYear || (fullYear == currentYear && month < currentMonth) {
		return FieldResult{Error: ErrCardExpired}
	}
	if fullYear > currentYear+maxExpiryYearsAhead {
		return FieldResult{Error: ErrExpiryYear}
	}

	return FieldResult{Valid: true}
}

// ValidateCVV checks the CVV length expected for brand.
func ValidateCVV(cvv string, brand entities.CardBrand) FieldResult {
	if cvv == "" {
		return FieldResult{Error: ErrCVVRequired}
	}

	n := len(Digits(cvv))
	if brand.IsSupported() {
		if n != 3 {
			return FieldResult{Error: ErrCVVLengthKnownBrand}
		}
		return FieldResult{Valid: true}
	}

	if n < 3 || n > 4 {
		return FieldResult{Error: ErrCVVLength}
	}
	return FieldResult{Valid: true}
}

// LastFour returns up to the last four digits of cardNumber.
func LastFour(cardNumber string) string {
	digits := Digits(cardNumber)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Validate runs every check on in and aggregates the result.
//
// The CVV is only checked once the card number is valid, since its expected
// length depends on the brand.
func Validate(in Input) entities.ValidationResult {
	return ValidateAt(in, time.Now())
}

// ValidateAt is Validate with a fixed clock for the expiry check.
func ValidateAt(in Input, now time.Time) entities.ValidationResult {
	card := ValidateCardNumber(in.CardNumber)
	expiry := ValidateExpiryDateAt(in.ExpiryMonth, in.ExpiryYear, now)

	cvv := FieldResult{Error: ErrCVVWithoutCard}
	if card.Valid {
		cvv = ValidateCVV(in.CVV, card.Brand)
	}

	return aggregate(card, expiry, cvv)
}

// aggregate keeps Overall.Valid equal to the conjunction of the sub-results.
func aggregate(card CardNumberResult, expiry, cvv FieldResult) entities.ValidationResult {
	res := entities.ValidationResult{
		CardNumber: entities.CardNumberCheck{Valid: card.Valid, Brand: card.Brand, Error: errPtr(card.Error)},
		ExpiryDate: entities.FieldCheck{Valid: expiry.Valid, Error: errPtr(expiry.Error)},
		CVV:        entities.FieldCheck{Valid: cvv.Valid, Error: errPtr(cvv.Error)},
		Overall:    entities.OverallCheck{Errors: []string{}},
	}

	for _, e := range []*string{res.CardNumber.Error, res.ExpiryDate.Error, res.CVV.Error} {
		if e != nil {
			res.Overall.Errors = append(res.Overall.Errors, *e)
		}
	}
	res.Overall.Valid = card.Valid && expiry.Valid && cvv.Valid

	return res
}

func errPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
