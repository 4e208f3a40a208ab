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

//lint:file-ignore SA5008 duplicated struct tags are ok for config

package config

import (
	"os"
	"path/filepath"

	"code.vegaprotocol.io/marketplace/core/broker"
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/marketplace"
	"code.vegaprotocol.io/marketplace/core/metrics"
	"code.vegaprotocol.io/marketplace/core/processor"
	"code.vegaprotocol.io/marketplace/core/registry"
	"code.vegaprotocol.io/marketplace/core/snapshot"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	configFileName = "config.toml"
	snapshotsDir   = "snapshots"
)

// Config ties together all other application configuration types.
type Config struct {
	Logging     logging.Config     `group:"Logging" namespace:"logging"`
	Broker      broker.Config      `group:"Broker" namespace:"broker"`
	Currency    currency.Config    `group:"Currency" namespace:"currency"`
	Registry    registry.Config    `group:"Registry" namespace:"registry"`
	Marketplace marketplace.Config `group:"Marketplace" namespace:"marketplace"`
	Processor   processor.Config   `group:"Processor" namespace:"processor"`
	Snapshot    snapshot.Config    `group:"Snapshot" namespace:"snapshot"`
	Metrics     metrics.Config     `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns a set of default configs for all packages, the
// snapshots are stored under the home directory.
func NewDefaultConfig(home string) Config {
	snap := snapshot.NewDefaultConfig()
	snap.DBPath = filepath.Join(home, snapshotsDir)

	return Config{
		Logging:     logging.NewDefaultConfig(),
		Broker:      broker.NewDefaultConfig(),
		Currency:    currency.NewDefaultConfig(),
		Registry:    registry.NewDefaultConfig(),
		Marketplace: marketplace.NewDefaultConfig(),
		Processor:   processor.NewDefaultConfig(),
		Snapshot:    snap,
		Metrics:     metrics.NewDefaultConfig(),
	}
}

// Path returns the location of the configuration file in the home directory.
func Path(home string) string {
	return filepath.Join(home, configFileName)
}

// Read loads the configuration file from the home directory, values
// missing from the file keep their default.
func Read(home string) (*Config, error) {
	buf, err := os.ReadFile(Path(home))
	if err != nil {
		return nil, errors.Wrap(err, "could not read configuration")
	}
	cfg := NewDefaultConfig(home)
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode configuration")
	}
	return &cfg, nil
}

// Write saves the configuration in the home directory, creating it if needed.
func Write(home string, cfg *Config) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return errors.Wrap(err, "could not create home directory")
	}
	f, err := os.OpenFile(Path(home), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "could not open configuration file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(err, "could not encode configuration")
	}
	return nil
}
