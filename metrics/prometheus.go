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
	"fmt"
	"net/http"
	"time"

	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gsy"

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	orderCounter     *prometheus.CounterVec
	tradeCounter     *prometheus.CounterVec
	tradedEnergy     *prometheus.CounterVec
	forwardedCounter *prometheus.CounterVec
	settledCounter   *prometheus.CounterVec
	liveMarkets      prometheus.Gauge
	tickTime         *prometheus.HistogramVec
)

// tickBuckets cover sub millisecond phases up to ticks of a large grid.
var tickBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

type instrument int

type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	histogramV *prometheus.HistogramVec
}

// InstrumentOption - vararg for instrument options setting
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures and registers a new metrics instrument. Gauges
// are plain, counters and histograms are always vectors.
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
		ret.gauge = prometheus.NewGauge(prometheus.GaugeOpts(opt.opts))
		col = ret.gauge
	case Counter:
		ret.counterV = prometheus.NewCounterVec(prometheus.CounterOpts(opt.opts), opt.vectors)
		col = ret.counterV
	case Histogram:
		ret.histogramV = prometheus.NewHistogramVec(opt.histogram(), opt.vectors)
		col = ret.histogramV
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start registers the instruments and serves them over http. It is a
// no-op when metrics are disabled. Calling it twice is an error.
func Start(log *logging.Logger, conf Config) error {
	if !conf.Enabled {
		return nil
	}
	if err := setupMetrics(); err != nil {
		return errors.Wrap(err, "could not set up metrics")
	}
	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", conf.Port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics endpoint stopped",
				logging.String("address", addr),
				logging.Error(err),
			)
		}
	}()
	return nil
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:      i.opts.Name,
		Namespace: i.opts.Namespace,
		Help:      i.opts.Help,
		Buckets:   i.buckets,
	}
}

// Gauge returns a prometheus Gauge instrument
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// CounterVec returns a prometheus CounterVec instrument
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"orders_total",
		Namespace(namespace),
		Vectors("market", "side"),
		Help("Number of orders placed"),
	)
	if err != nil {
		return err
	}
	if orderCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Counter,
		"trades_total",
		Namespace(namespace),
		Vectors("market"),
		Help("Number of trades"),
	)
	if err != nil {
		return err
	}
	if tradeCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Counter,
		"traded_energy_kwh_total",
		Namespace(namespace),
		Vectors("market"),
		Help("Energy traded, in kWh"),
	)
	if err != nil {
		return err
	}
	if tradedEnergy, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Counter,
		"forwarded_orders_total",
		Namespace(namespace),
		Vectors("engine", "side"),
		Help("Number of orders mirrored into an adjacent market"),
	)
	if err != nil {
		return err
	}
	if forwardedCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Counter,
		"settled_trades_total",
		Namespace(namespace),
		Vectors("engine", "side"),
		Help("Number of trades replayed from a mirror back into its source market"),
	)
	if err != nil {
		return err
	}
	if settledCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Gauge,
		"live_markets",
		Namespace(namespace),
		Help("Number of markets currently open"),
	)
	if err != nil {
		return err
	}
	if liveMarkets, err = h.Gauge(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Histogram,
		"tick_duration_seconds",
		Namespace(namespace),
		Vectors("phase"),
		Buckets(tickBuckets),
		Help("Time spent processing a tick phase"),
	)
	if err != nil {
		return err
	}
	if tickTime, err = h.HistogramVec(); err != nil {
		return err
	}
	return nil
}

// OrderCounterInc increments the order counter.
func OrderCounterInc(labelValues ...string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(labelValues...).Inc()
}

// TradeCounterInc increments the trade counter.
func TradeCounterInc(labelValues ...string) {
	if tradeCounter == nil {
		return
	}
	tradeCounter.WithLabelValues(labelValues...).Inc()
}

// TradedEnergyAdd adds traded energy.
func TradedEnergyAdd(energy float64, labelValues ...string) {
	if tradedEnergy == nil {
		return
	}
	tradedEnergy.WithLabelValues(labelValues...).Add(energy)
}

// ForwardedCounterInc increments the forwarded orders counter.
func ForwardedCounterInc(labelValues ...string) {
	if forwardedCounter == nil {
		return
	}
	forwardedCounter.WithLabelValues(labelValues...).Inc()
}

// SettledCounterInc increments the settled trades counter.
func SettledCounterInc(labelValues ...string) {
	if settledCounter == nil {
		return
	}
	settledCounter.WithLabelValues(labelValues...).Inc()
}

// LiveMarketsSet updates the number of open markets.
func LiveMarketsSet(n int) {
	if liveMarkets == nil {
		return
	}
	liveMarkets.Set(float64(n))
}

// StartTick starts timing a tick phase, call the returned func once done.
func StartTick(phase string) func() {
	startTime := time.Now()
	return func() {
		if tickTime == nil {
			return
		}
		tickTime.WithLabelValues(phase).Observe(time.Since(startTime).Seconds())
	}
}
