package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

type saleInput struct {
	IDSpotify   string          `json:"id_spotify" validate:"required"`
	Value       decimal.Decimal `json:"value" validate:"money,gt=0"`
	ReleaseDate string          `json:"release_date" validate:"release_date"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   saleInput
		invalid []string
	}{
		{
			name:  "valid",
			input: saleInput{IDSpotify: "4aawyAB9vmqN3uQ7FjRGTy", Value: decimal.RequireFromString("30.00"), ReleaseDate: "2019-05-17"},
		},
		{
			name:    "missing id and zero value",
			input:   saleInput{Value: decimal.Zero},
			invalid: []string{"id_spotify", "value"},
		},
		{
			name:    "negative value",
			input:   saleInput{IDSpotify: "x", Value: decimal.NewFromInt(-1)},
			invalid: []string{"value"},
		},
		{
			name:    "sub-cent value",
			input:   saleInput{IDSpotify: "x", Value: decimal.RequireFromString("0.001")},
			invalid: []string{"value"},
		},
		{
			name:    "extreme exponent value",
			input:   saleInput{IDSpotify: "x", Value: decimal.RequireFromString("1e-400000000")},
			invalid: []string{"value"},
		},
		{
			name:    "value beyond range",
			input:   saleInput{IDSpotify: "x", Value: decimal.RequireFromString("1000000000000")},
			invalid: []string{"value"},
		},
		{
			name:    "bad release date",
			input:   saleInput{IDSpotify: "x", Value: decimal.NewFromInt(1), ReleaseDate: "17/05/2019"},
			invalid: []string{"release_date"},
		},
		{
			name:  "year only release date",
			input: saleInput{IDSpotify: "x", Value: decimal.NewFromInt(1), ReleaseDate: "1999"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.input)
			if len(errs) != len(tt.invalid) {
				t.Fatalf("expected %d errors, got %v", len(tt.invalid), errs)
			}
			for _, field := range tt.invalid {
				if _, ok := errs[field]; !ok {
					t.Fatalf("expected error for %s, got %v", field, errs)
				}
			}
		})
	}
}
