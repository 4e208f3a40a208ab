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

package snapshot

import (
	"errors"
	"os"

	"code.vegaprotocol.io/marketplace/libs/config/encoding"
	"code.vegaprotocol.io/marketplace/logging"
)

const (
	namedLogger = "snapshot"
	goLevelDB   = "GOLevelDB"
	memDB       = "memory"
)

var ErrInvalidStorageMethod = errors.New("invalid snapshot storage method")

type Config struct {
	Level      encoding.LogLevel `long:"log-level" choice:"debug" choice:"info" choice:"warning" choice:"error" choice:"panic" choice:"fatal" description:"Logging level (default: info)"`
	KeepRecent int               `long:"snapshot-keep-recent" description:"Number of historic snapshots to keep on disk"`
	Storage    string            `long:"storage" choice:"GOLevelDB" choice:"memory" description:"Storage type to use"`
	DBPath     string            `long:"db-path" description:"Path to database"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:      encoding.LogLevel{Level: logging.InfoLevel},
		KeepRecent: 10,
		Storage:    goLevelDB,
	}
}

func NewTestConfig() Config {
	cfg := NewDefaultConfig()
	cfg.Storage = memDB
	return cfg
}

// Validate checks the values in the config file are sensible, and returns the path
// to create/load the snapshots from.
func (c *Config) Validate() (string, error) {
	if c.KeepRecent < 1 {
		return "", errors.New("at least one snapshot must be kept")
	}
	if len(c.DBPath) != 0 && c.Storage == memDB {
		return "", errors.New("dbpath cannot be set when storage method is in-memory")
	}

	switch c.Storage {
	case memDB:
		return "", nil
	case goLevelDB:
		if len(c.DBPath) == 0 {
			return "", errors.New("dbpath is required when storage method is GOLevelDB")
		}
		stat, err := os.Stat(c.DBPath)
		if err != nil {
			if os.IsNotExist(err) {
				return c.DBPath, os.MkdirAll(c.DBPath, 0o700)
			}
			return "", err
		}
		if !stat.IsDir() {
			return "", errors.New("snapshot DB path is not a directory")
		}
		return c.DBPath, nil
	default:
		return "", ErrInvalidStorageMethod
	}
}
