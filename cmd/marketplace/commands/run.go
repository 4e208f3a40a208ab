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

package commands

import (
	"context"
	"encoding/hex"
	"time"

	"code.vegaprotocol.io/marketplace/core/broker"
	"code.vegaprotocol.io/marketplace/core/config"
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/marketplace"
	"code.vegaprotocol.io/marketplace/core/metrics"
	"code.vegaprotocol.io/marketplace/core/processor"
	"code.vegaprotocol.io/marketplace/core/registry"
	"code.vegaprotocol.io/marketplace/core/snapshot"
	"code.vegaprotocol.io/marketplace/core/subscribers"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/core/vegatime"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type RunCmd struct {
	HomeFlag

	Script      string `long:"script" required:"true" description:"Path of the TOML script to replay"`
	MetricsAddr string `long:"metrics-addr" description:"Serve the prometheus metrics on this address, overrides the configuration"`
	NoSnapshot  bool   `long:"no-snapshot" description:"Do not take a snapshot once the script is replayed"`
}

var runCmd RunCmd

func (opts *RunCmd) Execute(_ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgwatcher, err := config.NewWatcher(ctx, logging.NewProdLogger(), opts.Home)
	if err != nil {
		return errors.Wrap(err, "could not load the configuration, run the init command first")
	}
	cfg := cfgwatcher.Get()
	if opts.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = opts.MetricsAddr
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	script, err := ReadScript(opts.Script)
	if err != nil {
		return err
	}

	n, err := newNode(log, cfg, script.Start)
	if err != nil {
		return err
	}
	defer n.stop()

	cfgwatcher.OnConfigUpdate(n.reloadConf)

	if err := n.restore(ctx); err != nil {
		return err
	}
	if err := n.replay(ctx, script); err != nil {
		return err
	}
	if opts.NoSnapshot {
		return nil
	}
	return n.snapshot(ctx)
}

// node holds the engines wired together the same way for every run.
type node struct {
	log *logging.Logger

	broker      *broker.Broker
	timeService *vegatime.Svc
	currency    *currency.Engine
	registry    *registry.Engine
	marketplace *marketplace.Engine
	processor   *processor.Processor
	snapshots   *snapshot.Engine
	metrics     *metrics.Server
}

func newNode(log *logging.Logger, cfg config.Config, start time.Time) (*node, error) {
	if start.IsZero() {
		start = time.Now()
	}

	n := &node{log: log}
	n.broker = broker.New(log, cfg.Broker)
	n.timeService = vegatime.New(log, n.broker, start)
	n.currency = currency.New(log, cfg.Currency, n.broker)
	n.registry = registry.New(log, cfg.Registry, n.broker, types.EscrowParty)
	n.marketplace = marketplace.New(log, cfg.Marketplace, n.broker, n.timeService, n.registry, n.currency)
	n.processor = processor.New(log, cfg.Processor, n.broker, n.marketplace, n.currency, n.registry)
	n.timeService.NotifyOnTick(n.onTick)

	n.broker.SubscribeBatch(
		subscribers.NewEventLogger(log, events.MarketplaceEvents()...),
		subscribers.NewMetrics(n.currency),
	)

	snapshots, err := snapshot.New(log, cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	n.snapshots = snapshots
	n.snapshots.AddProviders(n.timeService, n.currency, n.registry, n.marketplace)

	n.metrics, err = metrics.Start(log, cfg.Metrics)
	if err != nil {
		_ = n.snapshots.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) reloadConf(cfg config.Config) {
	n.broker.ReloadConf(cfg.Broker)
	n.currency.ReloadConf(cfg.Currency)
	n.registry.ReloadConf(cfg.Registry)
	n.marketplace.ReloadConf(cfg.Marketplace)
	n.processor.ReloadConf(cfg.Processor)
	n.snapshots.ReloadConf(cfg.Snapshot)
}

func (n *node) restore(ctx context.Context) error {
	loaded, err := n.snapshots.LoadLatest(ctx)
	if err != nil {
		return errors.Wrap(err, "could not restore the latest snapshot")
	}
	if !loaded {
		n.log.Info("no snapshot found, starting from an empty state")
	}
	return nil
}

// onTick reports the auctions which reached their end with the last time
// update, they are left for any party to finish.
func (n *node) onTick(_ context.Context, now time.Time) {
	for _, id := range n.marketplace.AuctionsEndedBetween(n.timeService.GetTimeLastBatch(), now) {
		n.log.Info("auction can be finished", logging.ItemID(id))
	}
}

// replay applies the steps in order. Rejected commands are reported by the
// processor and do not stop the replay.
func (n *node) replay(ctx context.Context, script *Script) error {
	decimals := n.currency.Decimals()
	for i, st := range script.Steps {
		switch st.Type {
		case stepMint:
			amount, err := st.MintAmount(decimals)
			if err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
			if err := n.currency.Mint(ctx, st.Party, amount); err != nil {
				return errors.Wrapf(err, "step %d: could not mint", i+1)
			}
		case stepAdvanceTime:
			d, err := st.AdvanceBy()
			if err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
			n.timeService.SetTimeNow(ctx, n.timeService.GetTimeNow().Add(d))
		case stepCommand:
			cmd, err := st.ToCommand(decimals)
			if err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
			res, err := n.processor.Deliver(ctx, st.Party, cmd)
			if err != nil {
				n.log.Warn("command rejected",
					logging.Int("step", i+1),
					logging.String("command", cmd.CommandName()),
					logging.PartyID(st.Party),
					logging.Error(err),
				)
				continue
			}
			n.log.Info("command applied",
				logging.Int("step", i+1),
				logging.String("command", cmd.CommandName()),
				logging.PartyID(st.Party),
				logging.ItemID(res.ItemID),
				logging.Bool("success", res.Success),
			)
		}
	}
	return nil
}

func (n *node) snapshot(ctx context.Context) error {
	hash, err := n.snapshots.Snapshot(ctx)
	if err != nil {
		return errors.Wrap(err, "could not take snapshot")
	}
	version, _ := n.snapshots.Info()
	n.log.Info("snapshot taken",
		logging.Uint64("version", version),
		logging.String("hash", hex.EncodeToString(hash)),
	)
	return nil
}

func (n *node) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.metrics.Stop(ctx); err != nil {
		n.log.Error("could not stop metrics server", logging.Error(err))
	}
	if err := n.snapshots.Close(); err != nil {
		n.log.Error("could not close snapshot database", logging.Error(err))
	}
}

func Run(_ context.Context, parser *flags.Parser) error {
	runCmd = RunCmd{}

	var (
		short = "Replay a script against the marketplace"
		long  = "Restore the latest snapshot, replay the script steps then take a new snapshot"
	)
	_, err := parser.AddCommand("run", short, long, &runCmd)
	return err
}
