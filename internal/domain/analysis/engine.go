package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultDelay is the simulated processing latency of one analysis
const DefaultDelay = 1500 * time.Millisecond

// Engine runs text scrutiny, anomaly detection and the satellite check, then
// fuses them into a risk score. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	anomaly   *AnomalyDetector
	satellite *SatelliteValidator
	delay     time.Duration
}

type Option func(*Engine)

// WithDelay overrides DefaultDelay. Zero disables the wait.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

func NewEngine(rng RandomSource, opts ...Option) *Engine {
	if rng == nil {
		rng = NewRandom()
	}
	e := &Engine{
		anomaly:   NewAnomalyDetector(rng),
		satellite: NewSatelliteValidator(rng),
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze is one cancellable unit of work: on cancellation it returns
// ctx.Err() and a zero Result.
func (e *Engine) Analyze(ctx context.Context, in Input) (Result, error) {
	if err := e.wait(ctx); err != nil {
		return Result{}, err
	}

	var (
		esg       ESGAnalysis
		anomaly   AnomalyDetection
		satellite SatelliteValidation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		esg = ScrutinizeText(in.Description)
		return gctx.Err()
	})
	g.Go(func() error {
		anomaly = e.anomaly.Detect(in.ClaimedCredits, in.HistoricalCredits)
		return gctx.Err()
	})
	g.Go(func() error {
		satellite = e.satellite.Validate(in.Coordinates)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		ESGAnalysis:         esg,
		AnomalyDetection:    anomaly,
		SatelliteValidation: satellite,
		RiskScore:           FuseRisk(esg, anomaly, satellite),
	}, nil
}

func (e *Engine) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
