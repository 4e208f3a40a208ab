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

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains the configurable items for this package.
type Config struct {
	Environment string `long:"environment" choice:"dev" choice:"prod" choice:"custom"`
	Custom      *Custom
}

// Custom contains the zap configuration used when Environment is "custom".
type Custom struct {
	Zap *Zap
}

// Zap is a subset of zap.Config which can be expressed in TOML.
type Zap struct {
	Level             Level
	Development       bool
	Encoding          string // console or json
	OutputPaths       []string
	ErrorOutputPaths  []string
	DisableStacktrace bool
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
		Custom: &Custom{
			Zap: &Zap{
				Level:            InfoLevel,
				Development:      false,
				Encoding:         "json",
				OutputPaths:      []string{"stdout"},
				ErrorOutputPaths: []string{"stderr"},
			},
		},
	}
}

func (z *Zap) toZapConfig() zap.Config {
	if z == nil {
		z = NewDefaultConfig().Custom.Zap
	}
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.Level(z.Level)),
		Development:       z.Development,
		DisableStacktrace: z.DisableStacktrace,
		Encoding:          z.Encoding,
		EncoderConfig: zapcore.EncoderConfig{
			CallerKey:      "caller",
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeName:     zapcore.FullNameEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			LevelKey:       "level",
			LineEnding:     "\n",
			MessageKey:     "message",
			NameKey:        "logger",
			StacktraceKey:  "stacktrace",
			TimeKey:        "@timestamp",
		},
		OutputPaths:      z.OutputPaths,
		ErrorOutputPaths: z.ErrorOutputPaths,
	}
}
