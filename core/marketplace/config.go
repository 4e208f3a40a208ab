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

package marketplace

import (
	"time"

	"code.vegaprotocol.io/marketplace/libs/config/encoding"
	"code.vegaprotocol.io/marketplace/logging"
)

const (
	// namedLogger is the identifier for package and should ideally match the package name
	// this is simply emitted as a hierarchical label e.g. 'core.marketplace'.
	namedLogger = "marketplace"
)

// Config is the configuration of the marketplace package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	AuctionDuration   encoding.Duration `long:"auction-duration" description:"minimum time an auction runs before it can be finished"`
	MinBidsForSuccess uint64            `long:"min-bids-for-success" description:"number of bids an auction needs to be settled with the highest bidder"`
}

// NewDefaultConfig creates an instance of the package specific configuration, given a
// pointer to a logger instance to be used for logging within the package.
func NewDefaultConfig() Config {
	return Config{
		Level:             encoding.LogLevel{Level: logging.InfoLevel},
		AuctionDuration:   encoding.Duration{Duration: 72 * time.Hour},
		MinBidsForSuccess: 3,
	}
}
