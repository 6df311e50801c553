// Package scenario builds shifted copies of a yield curve: a ladder of
// parallel shifts plus optional key-rate bumps, one per node. Scenario curves
// are built concurrently and memoised by key, so asking the same ladder twice
// reuses the curves.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/config"
	"github.com/meenmo/termstructure/curve"
)

var ErrNilCurve = errors.New("scenario: base curve is nil or empty")

type Kind int

const (
	Parallel Kind = iota
	KeyRate
)

func (k Kind) String() string {
	switch k {
	case Parallel:
		return "parallel"
	case KeyRate:
		return "key-rate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scenario is one shifted curve. Index and Tenor are only set for key-rate
// bumps.
type Scenario struct {
	Key   string
	Kind  Kind
	Shift float64
	Index int
	Tenor float64
	Curve *curve.YieldCurve
}

type job struct {
	key   string
	kind  Kind
	shift float64
	index int
}

// Ladder derives scenarios from one base curve.
type Ladder struct {
	base  *curve.YieldCurve
	cfg   config.Scenario
	cache *cache.Cache
	log   logrus.FieldLogger
	limit int
}

// NewLadder returns a ladder over base. A nil logger means the standard
// logrus logger.
func NewLadder(base *curve.YieldCurve, cfg config.Scenario, log logrus.FieldLogger) (*Ladder, error) {
	if base.Len() == 0 {
		return nil, ErrNilCurve
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ladder{
		base:  base,
		cfg:   cfg,
		cache: cache.New(cache.NoExpiration, 0),
		log:   log,
		limit: runtime.GOMAXPROCS(0),
	}, nil
}

// Base is the unshifted curve.
func (l *Ladder) Base() *curve.YieldCurve { return l.base }

// Cached is the number of scenario curves held in memory.
func (l *Ladder) Cached() int { return l.cache.ItemCount() }

func (l *Ladder) jobs() []job {
	out := make([]job, 0, len(l.cfg.Shift)+l.base.Len())
	for _, s := range l.cfg.Shift {
		out = append(out, job{key: parallelKey(s), kind: Parallel, shift: s, index: -1})
	}
	if l.cfg.KeyRates {
		for i := 0; i < l.base.Len(); i++ {
			out = append(out, job{key: keyRateKey(i, l.cfg.Bump), kind: KeyRate, shift: l.cfg.Bump, index: i})
		}
	}
	return out
}

func parallelKey(shift float64) string { return fmt.Sprintf("parallel:%+g", shift) }

func keyRateKey(index int, shift float64) string {
	return fmt.Sprintf("key-rate:%d:%+g", index, shift)
}

// Build returns every configured scenario in ladder order: parallel shifts as
// listed, then key-rate bumps by node index.
func (l *Ladder) Build(ctx context.Context) ([]Scenario, error) {
	jobs := l.jobs()
	out := make([]Scenario, len(jobs))
	tenors := l.base.Tenors()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, s := range jobs {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			crv, err := l.curve(s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.key, err)
			}
			out[i] = Scenario{Key: s.key, Kind: s.kind, Shift: s.shift, Index: s.index, Curve: crv}
			if s.kind == KeyRate {
				out[i].Tenor = tenors[s.index]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"scenarios": len(out),
		"cached":    l.cache.ItemCount(),
	}).Debug("scenario ladder built")
	return out, nil
}

func (l *Ladder) curve(s job) (*curve.YieldCurve, error) {
	if v, ok := l.cache.Get(s.key); ok {
		return v.(*curve.YieldCurve), nil
	}

	var (
		crv *curve.YieldCurve
		err error
	)
	switch s.kind {
	case Parallel:
		crv, err = l.base.ShiftRates(s.shift)
	case KeyRate:
		crv, err = l.base.ShiftRate(s.shift, s.index)
	default:
		err = fmt.Errorf("unknown kind %s", s.kind)
	}
	if err != nil {
		return nil, err
	}

	// Two goroutines may race to build the same key; the first one stored wins.
	if err := l.cache.Add(s.key, crv, cache.NoExpiration); err != nil {
		if v, ok := l.cache.Get(s.key); ok {
			return v.(*curve.YieldCurve), nil
		}
	}
	return crv, nil
}

// Valuation is a bond's present value under one scenario.
type Valuation struct {
	Key    string  `json:"scenario"`
	Shift  float64 `json:"shift"`
	Tenor  float64 `json:"tenor,omitempty"`
	PV     float64 `json:"pv"`
	Change float64 `json:"change"`
}

// Reprice values b on the base curve and under every scenario. Change is the
// scenario PV less the base PV.
func Reprice(base *curve.YieldCurve, scenarios []Scenario, b *bond.Bond) (float64, []Valuation, error) {
	basePV, err := b.Price(base, 0)
	if err != nil {
		return 0, nil, err
	}

	out := make([]Valuation, len(scenarios))
	for i, s := range scenarios {
		pv, err := b.Price(s.Curve, 0)
		if err != nil {
			return 0, nil, fmt.Errorf("scenario %s: %w", s.Key, err)
		}
		out[i] = Valuation{Key: s.Key, Shift: s.Shift, Tenor: s.Tenor, PV: pv, Change: pv - basePV}
	}
	return basePV, out, nil
}
