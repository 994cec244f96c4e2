package cardvalidation

import (
	"testing"
	"time"

	"payment_service/internal/domain/entities"
)

var fixedNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func TestLuhn(t *testing.T) {
	cases := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"4111111111111112", false},
		{"5500000000000004", true},
		{"5500000000000005", false},
		{"4222222222222", true},
		{"4111 1111 1111 1111", true},
		{"4111-1111-1111-1111", true},
		{"", false},
		{"abc", false},
	}

	for _, tc := range cases {
		if got := Luhn(tc.number); got != tc.want {
			t.Fatalf("Luhn(%q) = %v, want %v", tc.number, got, tc.want)
		}
	}
}

func TestDetectBrand(t *testing.T) {
	cases := []struct {
		name   string
		number string
		want   entities.CardBrand
	}{
		{name: "visa 16", number: "4111111111111111", want: entities.CardBrandVisa},
		{name: "visa 13", number: "4222222222222", want: entities.CardBrandVisa},
		{name: "visa with separators", number: "4111 1111 1111 1111", want: entities.CardBrandVisa},
		{name: "visa prefix wrong length", number: "411111111111111", want: entities.CardBrandUnknown},
		{name: "visa prefix 19 digits", number: "4111111111111111111", want: entities.CardBrandUnknown},
		{name: "mastercard 51", number: "5105105105105100", want: entities.CardBrandMastercard},
		{name: "mastercard 55", number: "5500000000000004", want: entities.CardBrandMastercard},
		{name: "mastercard 2221", number: "2221000000000009", want: entities.CardBrandMastercard},
		{name: "mastercard 2720", number: "2720990000000007", want: entities.CardBrandMastercard},
		{name: "above 2720", number: "2721000000000004", want: entities.CardBrandUnknown},
		{name: "56 prefix", number: "5600000000000003", want: entities.CardBrandUnknown},
		{name: "50 prefix", number: "5000000000000009", want: entities.CardBrandUnknown},
		{name: "mastercard prefix 15 digits", number: "550000000000004", want: entities.CardBrandUnknown},
		{name: "amex", number: "378282246310005", want: entities.CardBrandUnknown},
		{name: "discover", number: "6011111111111117", want: entities.CardBrandUnknown},
		{name: "empty", number: "", want: entities.CardBrandUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectBrand(tc.number); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestValidateCardNumber(t *testing.T) {
	cases := []struct {
		name      string
		number    string
		wantValid bool
		wantBrand entities.CardBrand
		wantErr   string
	}{
		{name: "missing", number: "", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardNumberRequired},
		{name: "too short", number: "411111111111", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardNumberLength},
		{name: "too long", number: "41111111111111111111", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardNumberLength},
		{name: "letters only", number: "abcdefghijklmnop", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardNumberLength},
		{name: "unknown brand with valid luhn", number: "6011111111111117", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardBrandUnknown},
		{name: "unknown brand with invalid luhn", number: "6011111111111118", wantBrand: entities.CardBrandUnknown, wantErr: ErrCardBrandUnknown},
		{name: "visa failing luhn", number: "4111111111111112", wantBrand: entities.CardBrandVisa, wantErr: ErrCardNumberLuhn},
		{name: "mastercard failing luhn", number: "5500000000000005", wantBrand: entities.CardBrandMastercard, wantErr: ErrCardNumberLuhn},
		{name: "visa", number: "4111111111111111", wantValid: true, wantBrand: entities.CardBrandVisa},
		{name: "visa 13", number: "4222222222222", wantValid: true, wantBrand: entities.CardBrandVisa},
		{name: "mastercard", number: "5500 0000 0000 0004", wantValid: true, wantBrand: entities.CardBrandMastercard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateCardNumber(tc.number)
			if res.Valid != tc.wantValid || res.Brand != tc.wantBrand || res.Error != tc.wantErr {
				t.Fatalf("unexpected result: %+v", res)
			}
		})
	}
}

func TestValidateExpiryDateAt(t *testing.T) {
	cases := []struct {
		name    string
		month   int
		year    int
		wantErr string
	}{
		{name: "missing month", month: 0, year: 2027, wantErr: ErrExpiryRequired},
		{name: "missing year", month: 5, year: 0, wantErr: ErrExpiryRequired},
		{name: "month too high", month: 13, year: 2027, wantErr: ErrExpiryMonth},
		{name: "negative month", month: -1, year: 2027, wantErr: ErrExpiryMonth},
		{name: "current month", month: 10, year: 2026},
		{name: "current month two digit year", month: 10, year: 26},
		{name: "previous month", month: 9, year: 2026, wantErr: ErrCardExpired},
		{name: "previous year", month: 12, year: 2025, wantErr: ErrCardExpired},
		{name: "previous year two digit", month: 12, year: 25, wantErr: ErrCardExpired},
		{name: "twenty years ahead", month: 1, year: 2046},
		{name: "more than twenty years ahead", month: 1, year: 2047, wantErr: ErrExpiryYear},
		{name: "next month", month: 11, year: 2026},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateExpiryDateAt(tc.month, tc.year, fixedNow)
			if tc.wantErr == "" {
				if !res.Valid || res.Error != "" {
					t.Fatalf("expected valid, got %+v", res)
				}
				return
			}
			if res.Valid || res.Error != tc.wantErr {
				t.Fatalf("expected %q, got %+v", tc.wantErr, res)
			}
		})
	}
}

func TestValidateExpiryDate_UsesCurrentMonth(t *testing.T) {
	now := time.Now()
	if res := ValidateExpiryDate(int(now.Month()), now.Year()); !res.Valid {
		t.Fatalf("card expiring this month should be valid, got %+v", res)
	}
}

func TestValidateCVV(t *testing.T) {
	cases := []struct {
		name    string
		cvv     string
		brand   entities.CardBrand
		wantErr string
	}{
		{name: "missing", cvv: "", brand: entities.CardBrandVisa, wantErr: ErrCVVRequired},
		{name: "visa 3", cvv: "123", brand: entities.CardBrandVisa},
		{name: "visa 4", cvv: "1234", brand: entities.CardBrandVisa, wantErr: ErrCVVLengthKnownBrand},
		{name: "mastercard 2", cvv: "12", brand: entities.CardBrandMastercard, wantErr: ErrCVVLengthKnownBrand},
		{name: "mastercard 4", cvv: "1234", brand: entities.CardBrandMastercard, wantErr: ErrCVVLengthKnownBrand},
		{name: "unknown 3", cvv: "123", brand: entities.CardBrandUnknown},
		{name: "unknown 4", cvv: "1234", brand: entities.CardBrandUnknown},
		{name: "unknown 5", cvv: "12345", brand: entities.CardBrandUnknown, wantErr: ErrCVVLength},
		{name: "other brand 4", cvv: "1234", brand: entities.CardBrand("amex")},
		{name: "non digits stripped", cvv: "1a2b3", brand: entities.CardBrandVisa},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateCVV(tc.cvv, tc.brand)
			if tc.wantErr == "" {
				if !res.Valid {
					t.Fatalf("expected valid, got %+v", res)
				}
				return
			}
			if res.Valid || res.Error != tc.wantErr {
				t.Fatalf("expected %q, got %+v", tc.wantErr, res)
			}
		})
	}
}

func TestLastFour(t *testing.T) {
	cases := map[string]string{
		"4111111111111111":    "1111",
		"5500 0000 0000 0004": "0004",
		"123":                 "123",
		"":                    "",
		"12-34":               "1234",
	}
	for in, want := range cases {
		if got := LastFour(in); got != want {
			t.Fatalf("LastFour(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateAt_Aggregate(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		res := ValidateAt(Input{CardNumber: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 2030, CVV: "123"}, fixedNow)
		if !res.Overall.Valid || len(res.Overall.Errors) != 0 {
			t.Fatalf("expected valid, got %+v", res.Overall)
		}
		if res.CardNumber.Brand != entities.CardBrandVisa || res.CardNumber.Error != nil {
			t.Fatalf("unexpected card number check: %+v", res.CardNumber)
		}
	})

	t.Run("invalid card skips cvv", func(t *testing.T) {
		res := ValidateAt(Input{CardNumber: "4111111111111112", ExpiryMonth: 12, ExpiryYear: 2030, CVV: "123"}, fixedNow)
		if res.Overall.Valid {
			t.Fatalf("expected invalid")
		}
		if res.CVV.Valid || res.CVV.Error == nil || *res.CVV.Error != ErrCVVWithoutCard {
			t.Fatalf("expected synthesized cvv error, got %+v", res.CVV)
		}
		want := []string{ErrCardNumberLuhn, ErrCVVWithoutCard}
		if len(res.Overall.Errors) != len(want) {
			t.Fatalf("unexpected errors: %v", res.Overall.Errors)
		}
		for i := range want {
			if res.Overall.Errors[i] != want[i] {
				t.Fatalf("unexpected errors: %v", res.Overall.Errors)
			}
		}
	})

	t.Run("errors keep field order", func(t *testing.T) {
		res := ValidateAt(Input{CardNumber: "6011111111111117", ExpiryMonth: 1, ExpiryYear: 2020, CVV: ""}, fixedNow)
		want := []string{ErrCardBrandUnknown, ErrCardExpired, ErrCVVWithoutCard}
		if len(res.Overall.Errors) != 3 {
			t.Fatalf("unexpected errors: %v", res.Overall.Errors)
		}
		for i := range want {
			if res.Overall.Errors[i] != want[i] {
				t.Fatalf("unexpected errors: %v", res.Overall.Errors)
			}
		}
	})

	t.Run("only cvv invalid", func(t *testing.T) {
		res := ValidateAt(Input{CardNumber: "5500000000000004", ExpiryMonth: 10, ExpiryYear: 2026, CVV: "1234"}, fixedNow)
		if res.Overall.Valid || len(res.Overall.Errors) != 1 || res.Overall.Errors[0] != ErrCVVLengthKnownBrand {
			t.Fatalf("unexpected overall: %+v", res.Overall)
		}
	})
}

func TestValidateAt_AggregateInvariant(t *testing.T) {
	numbers := []string{"", "4111111111111111", "4111111111111112", "5500000000000004", "6011111111111117", "123"}
	expiries := [][2]int{{0, 0}, {13, 2030}, {9, 2026}, {10, 2026}, {1, 2050}}
	cvvs := []string{"", "12", "123", "1234"}

	for _, n := range numbers {
		for _, e := range expiries {
			for _, c := range cvvs {
				res := ValidateAt(Input{CardNumber: n, ExpiryMonth: e[0], ExpiryYear: e[1], CVV: c}, fixedNow)

				want := res.CardNumber.Valid && res.ExpiryDate.Valid && res.CVV.Valid
				if res.Overall.Valid != want {
					t.Fatalf("overall mismatch for %q %v %q: %+v", n, e, c, res)
				}

				invalid := 0
				for _, v := range []bool{res.CardNumber.Valid, res.ExpiryDate.Valid, res.CVV.Valid} {
					if !v {
						invalid++
					}
				}
				if len(res.Overall.Errors) != invalid {
					t.Fatalf("expected %d errors for %q %v %q, got %v", invalid, n, e, c, res.Overall.Errors)
				}
			}
		}
	}
}
