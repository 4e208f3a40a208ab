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
	"time"

	"code.vegaprotocol.io/marketplace/core/marketplace"

	"github.com/cucumber/godog"
)

type MarketplaceConfigurable interface {
	ReloadConf(cfg marketplace.Config)
}

// TheMarketplaceConfiguration updates cfg with the single row of the table
// and reloads the engine with it.
func TheMarketplaceConfiguration(engine MarketplaceConfigurable, cfg *marketplace.Config, table *godog.Table) error {
	rows := StrictParseTable(table, nil, []string{
		"auction duration",
		"min bids",
	})
	if len(rows) != 1 {
		return fmt.Errorf("expected a single configuration row, got %d", len(rows))
	}
	r := rows[0]
	if r.HasColumn("auction duration") {
		d, err := time.ParseDuration(r.MustStr("auction duration"))
		if err != nil {
			return fmt.Errorf("invalid auction duration: %w", err)
		}
		cfg.AuctionDuration.Duration = d
	}
	if r.HasColumn("min bids") {
		cfg.MinBidsForSuccess = r.MustU64("min bids")
	}
	engine.ReloadConf(*cfg)
	return nil
}
