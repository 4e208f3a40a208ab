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

package commands_test

import (
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/marketplace/cmd/marketplace/commands"
	"code.vegaprotocol.io/marketplace/core/broker"
	"code.vegaprotocol.io/marketplace/core/config"
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/marketplace"
	"code.vegaprotocol.io/marketplace/core/registry"
	"code.vegaprotocol.io/marketplace/core/snapshot"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/core/vegatime"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReplaysAndSnapshots(t *testing.T) {
	home := t.TempDir()
	cfg := config.NewDefaultConfig(home)
	require.NoError(t, config.Write(home, &cfg))

	cmd := commands.RunCmd{
		HomeFlag: commands.HomeFlag{Home: home},
		Script:   writeScript(t, testScript),
	}
	require.NoError(t, cmd.Execute(nil))
	// the second run starts from the snapshot of the first one
	require.NoError(t, cmd.Execute(nil))

	log := logging.NewTestLogger()
	snapshots, err := snapshot.New(log, cfg.Snapshot)
	require.NoError(t, err)
	defer snapshots.Close()

	infos, err := snapshots.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, uint64(2), infos[1].Version)

	b := broker.New(log, broker.NewDefaultConfig())
	ccy := currency.New(log, currency.NewDefaultConfig(), b)
	reg := registry.New(log, registry.NewDefaultConfig(), b, types.EscrowParty)
	ts := vegatime.New(log, b, time.Time{})
	mkt := marketplace.New(log, marketplace.NewDefaultConfig(), b, ts, reg, ccy)
	snapshots.AddProviders(ts, ccy, reg, mkt)

	loaded, err := snapshots.LoadLatest(context.Background())
	require.NoError(t, err)
	require.True(t, loaded)

	// bob was funded by both runs
	assert.Equal(t, num.MustParseUnits("200", 18).String(), ccy.BalanceOf("bob").String())

	owner, err := reg.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, types.EscrowParty, owner)

	auction, err := mkt.GetAuction(1)
	require.NoError(t, err)
	assert.True(t, auction.Active)
	assert.Equal(t, "alice", auction.Seller)

	// the item created by the second run stays with its owner
	owner, err = reg.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestRunWithoutConfiguration(t *testing.T) {
	cmd := commands.RunCmd{
		HomeFlag: commands.HomeFlag{Home: t.TempDir()},
		Script:   writeScript(t, testScript),
	}
	assert.Error(t, cmd.Execute(nil))
}
