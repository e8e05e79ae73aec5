package main

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homier/assoc"
	"github.com/homier/assoc/config"
	"github.com/homier/assoc/errcode"
	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/instrumented"
)

func loadConfig(opts *Options) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}

	if opts.MaxMemory != "" && cfg.ResolvedBackend() == config.BackendHash {
		limit, err := humanize.ParseBytes(opts.MaxMemory)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid memory ceiling %q", opts.MaxMemory)
		}

		slots := hashstore.CapacityFromSize[uint64, uint64](uintptr(limit))
		if slots < cfg.InitialCapacity {
			return nil, errors.Errorf("memory ceiling %s holds %d slots, below the initial capacity %d",
				humanize.Bytes(limit), slots, cfg.InitialCapacity)
		}

		cfg.MaxCapacity = slots
	}

	return cfg, cfg.Validate()
}

func run(opts *Options, w io.Writer) error {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	wl := workloadFromOptions(opts)
	if opts.Workload != "" {
		if wl, err = loadWorkload(opts.Workload, wl); err != nil {
			return err
		}
	} else if err := wl.Validate(); err != nil {
		return err
	}

	before := heapInUse()
	m := instrumented.Wrap("assocbench", assoc.New[uint64, uint64](assoc.WithConfig[uint64](cfg)))

	logger.Info("starting",
		"backend", m.Backend(),
		"stableABI", config.StableABI,
		"keys", humanize.Comma(int64(wl.Keys)),
		"seed", wl.Seed,
	)

	b := &bench{m: m, logger: logger, rng: rand.New(rand.NewPCG(wl.Seed, wl.Seed^0x9e3779b97f4a7c15))}
	if err := b.run(wl); err != nil {
		return err
	}

	var grown uint64
	if after := heapInUse(); after > before {
		grown = after - before
	}

	logger.Info("done", "entries", humanize.Comma(int64(m.Len())), "heapGrowth", humanize.Bytes(grown))

	if stats, err := m.Stats(); err == nil {
		logger.Info("table", "stats", stats.String())
	}

	if opts.Metrics {
		return dumpMetrics(logger)
	}

	return nil
}

type bench struct {
	m      *instrumented.Map[uint64, uint64]
	logger *slog.Logger
	rng    *rand.Rand
}

func (b *bench) phase(name string, ops int, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return err
	}

	elapsed := time.Since(start)

	var perOp time.Duration
	if ops > 0 {
		perOp = elapsed / time.Duration(ops)
	}

	b.logger.Info("phase", "name", name, "ops", humanize.Comma(int64(ops)), "elapsed", elapsed, "perOp", perOp)

	return nil
}

func (b *bench) run(wl Workload) error {
	// Even keys are inserted, odd keys are guaranteed misses.
	keys := make([]uint64, wl.Keys)
	for i, p := range b.rng.Perm(wl.Keys) {
		keys[i] = uint64(p) * 2
	}

	err := b.phase("insert", len(keys), func() error {
		for _, k := range keys {
			if err := b.m.Insert(k, k); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		err = b.phase("lookup", wl.Lookups, func() error {
			for i := range wl.Lookups {
				k := keys[b.rng.IntN(len(keys))] + uint64(i&1)
				if _, err := b.m.Find(k); err != nil && !errors.Is(err, errcode.ErrKeyNotFound) {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	erase := keys[:int(float64(len(keys))*wl.Erase)]
	err = b.phase("erase", len(erase), func() error {
		for _, k := range erase {
			if err := b.m.Erase(k); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	err = b.phase("iterate", b.m.Len(), func() error {
		var sum uint64
		for k, v := range b.m.All() {
			sum += k ^ v
		}

		if sum != 0 {
			return errors.Errorf("iteration saw %d mismatched entries", sum)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if b.m.Backend() != assoc.BackendOrdered || wl.Ranges == 0 {
		return nil
	}

	span := uint64(max(wl.Keys/100, 1)) * 2

	return b.phase("range", wl.Ranges, func() error {
		for range wl.Ranges {
			low := b.rng.Uint64N(uint64(wl.Keys)*2 + 1)

			seq, err := b.m.Range(assoc.At(low), assoc.At(low+span))
			if err != nil {
				return err
			}

			prev, first := uint64(0), true
			for k := range seq {
				if !first && k <= prev {
					return errors.Errorf("range out of order: %d after %d", k, prev)
				}

				prev, first = k, false
			}
		}

		return nil
	})
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return ms.HeapInuse
}

func dumpMetrics(logger *slog.Logger) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}

	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "assoc_") {
			continue
		}

		for _, metric := range family.GetMetric() {
			attrs := []any{"metric", family.GetName()}
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, label.GetName(), label.GetValue())
			}

			switch {
			case metric.GetCounter() != nil:
				attrs = append(attrs, "value", metric.GetCounter().GetValue())
			case metric.GetGauge() != nil:
				attrs = append(attrs, "value", metric.GetGauge().GetValue())
			}

			logger.Info("metric", attrs...)
		}
	}

	return nil
}
