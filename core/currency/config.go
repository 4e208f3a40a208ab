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

package currency

import (
	"code.vegaprotocol.io/marketplace/libs/config/encoding"
	"code.vegaprotocol.io/marketplace/logging"
)

const namedLogger = "currency"

// Config represent the configuration of the settlement currency.
type Config struct {
	Level    encoding.LogLevel `long:"log-level"`
	Symbol   string            `long:"symbol" description:"the ticker of the settlement currency"`
	Decimals uint32            `long:"decimals" description:"number of decimal places of the settlement currency"`
}

// NewDefaultConfig creates an instance of the package specific configuration, given a
// pointer to a logger instance to be used for logging within the package.
func NewDefaultConfig() Config {
	return Config{
		Level:    encoding.LogLevel{Level: logging.InfoLevel},
		Symbol:   "DIMA",
		Decimals: 18,
	}
}
