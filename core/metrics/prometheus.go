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

package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
)

const namespace = "marketplace"

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	setupOnce sync.Once
	setupErr  error

	commandCounter *prometheus.CounterVec
	commandTime    *prometheus.HistogramVec
	eventCounter   *prometheus.CounterVec
	escrowGauge    *prometheus.GaugeVec
)

// abstract prometheus types.
type instrument int

type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Subsystem - set subsystem.
func Subsystem(s string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Subsystem = s
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configure and register new metrics instrument.
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

// Gauge returns a prometheus Gauge instrument.
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// GaugeVec returns a prometheus GaugeVec instrument.
func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

// Counter returns a prometheus Counter instrument.
func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

// CounterVec returns a prometheus CounterVec instrument.
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) Histogram() (prometheus.Histogram, error) {
	if m.histogram == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogram, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

// Setup registers the marketplace instruments with the default
// prometheus registry. It is safe to call more than once.
func Setup() error {
	setupOnce.Do(func() {
		setupErr = setupMetrics()
	})
	return setupErr
}

// Server serves the registered instruments over http.
type Server struct {
	log *logging.Logger
	srv *http.Server
}

// Start enable metrics (given config). A nil server is returned when
// metrics are disabled.
func Start(log *logging.Logger, conf Config) (*Server, error) {
	if !conf.Enabled {
		return nil, nil
	}
	if err := Setup(); err != nil {
		return nil, err
	}

	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	s := &Server{
		log: log,
		srv: &http.Server{
			Addr:              conf.Address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	go func() {
		log.Info("starting metrics server",
			logging.String("address", conf.Address),
			logging.String("path", conf.Path))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", logging.Error(err))
		}
	}()
	return s, nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"commands_total",
		Namespace(namespace),
		Vectors("command", "result"),
		Help("Number of commands processed"),
	)
	if err != nil {
		return err
	}
	if commandCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Histogram,
		"command_seconds",
		Namespace(namespace),
		Vectors("command"),
		Buckets(prometheus.DefBuckets),
		Help("Time spent applying a command"),
	)
	if err != nil {
		return err
	}
	if commandTime, err = h.HistogramVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Counter,
		"events_total",
		Namespace(namespace),
		Vectors("type"),
		Help("Number of events sent through the broker"),
	)
	if err != nil {
		return err
	}
	if eventCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Gauge,
		"escrow_balance",
		Namespace(namespace),
		Vectors("symbol"),
		Help("Currency held in escrow by the marketplace, in token units"),
	)
	if err != nil {
		return err
	}
	escrowGauge, err = h.GaugeVec()
	return err
}

// CommandCounterInc increments the processed commands counter.
func CommandCounterInc(command, result string) {
	if commandCounter == nil {
		return
	}
	commandCounter.WithLabelValues(command, result).Inc()
}

// CommandTimeObserve records the time elapsed since start for a command.
func CommandTimeObserve(start time.Time, command string) {
	if commandTime == nil {
		return
	}
	commandTime.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// EventCounterInc increments the counter of a bus event type.
func EventCounterInc(types ...string) {
	if eventCounter == nil {
		return
	}
	for _, ty := range types {
		eventCounter.WithLabelValues(ty).Inc()
	}
}

// EscrowBalanceSet reports the escrowed currency, scaled down to token units.
func EscrowBalanceSet(symbol string, amount *num.Uint, decimals uint32) {
	if escrowGauge == nil || amount == nil {
		return
	}
	v := num.DecimalFromUint(amount).Shift(-int32(decimals)).InexactFloat64()
	escrowGauge.WithLabelValues(symbol).Set(v)
}
