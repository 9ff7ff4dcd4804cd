// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package budget

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency identifies the unit a price amount is expressed in.
type Currency string

const (
	// EUR is the euro, the currency suppliers quote in.
	EUR Currency = "EUR"

	// MAD is the Moroccan dirham, the currency budgets are reported in.
	MAD Currency = "MAD"
)

// DefaultEURToMAD is the fallback conversion rate used when the backend
// settings payload has not been fetched yet. The live rate always wins.
const DefaultEURToMAD = 10.85

// ErrUnknownCurrency is returned for a currency outside {EUR, MAD}.
var ErrUnknownCurrency = errors.New("unknown currency")

// IsValid reports whether the currency is supported by the price editor.
func (c Currency) IsValid() bool {
	return c == EUR || c == MAD
}

// Converter performs the price editor's EUR<->MAD unit conversion.
// It is display/entry logic only: the backend persists amounts in the
// currency the user picked and owns all cost computation.
type Converter struct {
	// EURToMAD is how many dirhams one euro buys.
	EURToMAD float64
}

// NewConverter returns a Converter for the given rate. A zero or negative
// rate falls back to DefaultEURToMAD.
func NewConverter(rate float64) Converter {
	if rate <= 0 {
		rate = DefaultEURToMAD
	}
	return Converter{EURToMAD: rate}
}

// Convert converts amount from one currency to the other. Converting a
// currency to itself is the identity.
func (c Converter) Convert(amount float64, from, to Currency) (float64, error) {
	if !from.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	if !to.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	if from == EUR {
		return amount * c.EURToMAD, nil
	}
	return amount / c.EURToMAD, nil
}

// formatter renders amounts with French number conventions (comma decimal
// separator), which is what the backend's reports use for both currencies.
var formatter = message.NewPrinter(language.French)

// FormatAmount renders an amount with two decimals and its currency code,
// e.g. "12 500,00 MAD".
func FormatAmount(amount float64, cur Currency) string {
	return formatter.Sprintf("%v %s",
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)),
		string(cur))
}

// FormatRate renders a conversion rate for display, e.g. "1 EUR = 10,85 MAD".
func FormatRate(rate float64) string {
	return formatter.Sprintf("1 EUR = %v MAD",
		number.Decimal(rate, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
