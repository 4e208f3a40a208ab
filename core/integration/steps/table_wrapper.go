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

package steps

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/cucumber/godog"
	"golang.org/x/exp/maps"
)

// amounts in tables are expressed in token units.
const tokenDecimals = 18

// StrictParseTable parses the table and panics when a required column is
// missing or when a column is neither required nor optional.
func StrictParseTable(dt *godog.Table, required, optional []string) []RowWrapper {
	if len(dt.Rows) == 0 {
		panic("the table is empty")
	}

	tableLen := len(dt.Rows) - 1
	header := dt.Rows[0]
	columns := map[string]struct{}{}
	for _, cell := range header.Cells {
		columns[cell.Value] = struct{}{}
	}

	allowed := map[string]struct{}{}
	for _, c := range required {
		if _, ok := columns[c]; !ok {
			panic(fmt.Errorf("the column %q is required by this table", c))
		}
		allowed[c] = struct{}{}
	}
	for _, c := range optional {
		allowed[c] = struct{}{}
	}
	for c := range columns {
		if _, ok := allowed[c]; !ok {
			known := maps.Keys(allowed)
			sort.Strings(known)
			panic(fmt.Errorf("the column %q is not expected by this table, expected one of: %s", c, strings.Join(known, ", ")))
		}
	}

	out := make([]RowWrapper, 0, tableLen)
	for _, row := range dt.Rows[1:] {
		wrapper := RowWrapper{values: map[string]string{}}
		for i := range row.Cells {
			wrapper.values[header.Cells[i].Value] = row.Cells[i].Value
		}
		out = append(out, wrapper)
	}
	return out
}

type RowWrapper struct {
	values map[string]string
}

func (r RowWrapper) HasColumn(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r RowWrapper) mustColumn(name string) string {
	s, ok := r.values[name]
	if !ok {
		panic(fmt.Errorf("column %q not found", name))
	}
	return s
}

func (r RowWrapper) Str(name string) string {
	return r.values[name]
}

func (r RowWrapper) MustStr(name string) string {
	return r.mustColumn(name)
}

func (r RowWrapper) MustU64(name string) uint64 {
	value, err := strconv.ParseUint(r.mustColumn(name), 10, 0)
	panicW(name, err)
	return value
}

// MustAmount parses a token amount, "1.5" is one and a half tokens.
func (r RowWrapper) MustAmount(name string) *num.Uint {
	value, err := num.ParseUnits(r.mustColumn(name), tokenDecimals)
	panicW(name, err)
	return value
}

func (r RowWrapper) MustBool(name string) bool {
	value, err := strconv.ParseBool(r.mustColumn(name))
	panicW(name, err)
	return value
}

func panicW(field string, err error) {
	if err != nil {
		panic(fmt.Errorf("couldn't parse %s: %w", field, err))
	}
}

func formatAmount(u *num.Uint) string {
	return num.FormatUnits(u, tokenDecimals)
}
