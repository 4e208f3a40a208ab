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

package integration_test

import (
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/integration/stubs"
	"code.vegaprotocol.io/marketplace/core/marketplace"
	"code.vegaprotocol.io/marketplace/core/processor"
	"code.vegaprotocol.io/marketplace/core/registry"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"
)

var setup *marketplaceTestSetup

type marketplaceTestSetup struct {
	log         *logging.Logger
	broker      *stubs.BrokerStub
	timeService *stubs.TimeStub

	currency    *currency.Engine
	registry    *registry.Engine
	marketplace *marketplace.Engine
	processor   *processor.Processor

	marketplaceCfg marketplace.Config
}

func newMarketplaceTestSetup() *marketplaceTestSetup {
	s := &marketplaceTestSetup{}
	s.log = logging.NewTestLogger()
	s.broker = stubs.NewBrokerStub()
	s.timeService = stubs.NewTimeStub()
	s.marketplaceCfg = marketplace.NewDefaultConfig()

	s.currency = currency.New(s.log, currency.NewDefaultConfig(), s.broker)
	s.registry = registry.New(s.log, registry.NewDefaultConfig(), s.broker, types.EscrowParty)
	s.marketplace = marketplace.New(
		s.log, s.marketplaceCfg, s.broker, s.timeService, s.registry, s.currency,
	)
	s.processor = processor.New(
		s.log, processor.NewDefaultConfig(), s.broker, s.marketplace, s.currency, s.registry,
	)
	return s
}
