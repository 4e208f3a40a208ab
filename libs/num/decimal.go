// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package num

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Decimal = decimal.Decimal

var (
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrTooManyDecimals   = errors.New("amount has more decimal places than the asset supports")
	ErrAmountOutOfBounds = errors.New("amount does not fit in 256 bits")
	dzero                = decimal.Zero
)

func DecimalZero() Decimal {
	return dzero
}

func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

func DecimalFromInt64(i int64) Decimal {
	return decimal.NewFromInt(i)
}

func DecimalFromUint(u *Uint) Decimal {
	return decimal.NewFromBigInt(u.BigInt(), 0)
}

// UintFromDecimal truncates the decimal part of d, returns true if
// d is negative or does not fit in 256 bits.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return NewUint(0), true
	}
	return UintFromBig(d.BigInt())
}

// ParseUnits converts a human readable token amount, e.g. "15.5", into its
// integer representation for an asset with the given number of decimals.
// "15.5" with 18 decimals gives 15500000000000000000.
func ParseUnits(s string, decimals uint32) (*Uint, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s (decimals %d)", ErrTooManyDecimals, s, decimals)
	}
	u, overflow := UintFromBig(scaled.BigInt())
	if overflow {
		return nil, ErrAmountOutOfBounds
	}
	return u, nil
}

// MustParseUnits is ParseUnits for constants and tests.
func MustParseUnits(s string, decimals uint32) *Uint {
	u, err := ParseUnits(s, decimals)
	if err != nil {
		panic(err)
	}
	return u
}

// FormatUnits is the reverse of ParseUnits.
func FormatUnits(u *Uint, decimals uint32) string {
	return DecimalFromUint(u).Shift(-int32(decimals)).String()
}
