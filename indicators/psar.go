package indicators

import (
	"fmt"
	"math"

	"sarbot/market"
)

// SARConfig holds the acceleration schedule for the parabolic SAR.
type SARConfig struct {
	AccelStart float64 // initial acceleration factor
	AccelStep  float64 // increment applied on each new extreme
	AccelMax   float64 // acceleration cap
}

// DefaultSARConfig matches the classic Wilder parameters.
func DefaultSARConfig() SARConfig {
	return SARConfig{AccelStart: 0.02, AccelStep: 0.02, AccelMax: 0.2}
}

func (cfg SARConfig) withDefaults() SARConfig {
	if cfg.AccelStart <= 0 {
		cfg.AccelStart = 0.02
	}
	if cfg.AccelStep <= 0 {
		cfg.AccelStep = 0.02
	}
	if cfg.AccelMax <= 0 {
		cfg.AccelMax = 0.2
	}
	return cfg
}

// ParabolicSAR is a streaming parabolic stop-and-reverse indicator.
// The SAR trails price from below in an uptrend and from above in a
// downtrend; the acceleration factor resets whenever the trend flips.
type ParabolicSAR struct {
	cfg SARConfig

	count     int
	rising    bool
	sar       float64
	extreme   float64
	accel     float64
	prevClose float64
	prevLow   float64
	prev2Low  float64
	prevHigh  float64
	prev2Hi   float64
}

// NewParabolicSAR creates a streaming SAR with the given acceleration
// schedule. Zero fields fall back to the classic 0.02/0.02/0.2.
func NewParabolicSAR(cfg SARConfig) *ParabolicSAR {
	return &ParabolicSAR{cfg: cfg.withDefaults()}
}

func (p *ParabolicSAR) Name() string {
	return fmt.Sprintf("PSAR(%g,%g)", p.cfg.AccelStart, p.cfg.AccelMax)
}

// Warmup is three candles: two to seed the trend, one to produce the
// first trailing value.
func (p *ParabolicSAR) Warmup() int { return 3 }

func (p *ParabolicSAR) Reset() {
	*p = ParabolicSAR{cfg: p.cfg}
}

func (p *ParabolicSAR) Ready() bool { return p.count >= p.Warmup() }

func (p *ParabolicSAR) Value() float64 {
	if !p.Ready() {
		return 0
	}
	return p.sar
}

func (p *ParabolicSAR) Update(c market.Candle) {
	p.count++
	switch p.count {
	case 1:
		p.prevClose = c.Close
		p.prevLow, p.prevHigh = c.Low, c.High
		return
	case 2:
		// Seed direction from the first two closes.
		p.rising = c.Close >= p.prevClose
		if p.rising {
			p.sar = math.Min(p.prevLow, c.Low)
			p.extreme = math.Max(p.prevHigh, c.High)
		} else {
			p.sar = math.Max(p.prevHigh, c.High)
			p.extreme = math.Min(p.prevLow, c.Low)
		}
		p.accel = p.cfg.AccelStart
		p.prev2Low, p.prev2Hi = p.prevLow, p.prevHigh
		p.prevLow, p.prevHigh = c.Low, c.High
		return
	}

	next := p.sar + p.accel*(p.extreme-p.sar)
	if p.rising {
		// SAR may never enter the range of the last two bars.
		next = math.Min(next, math.Min(p.prevLow, p.prev2Low))
		if c.Low < next {
			// Reversal: SAR jumps to the prior extreme, acceleration resets.
			p.rising = false
			next = p.extreme
			p.extreme = c.Low
			p.accel = p.cfg.AccelStart
		} else if c.High > p.extreme {
			p.extreme = c.High
			p.accel = math.Min(p.accel+p.cfg.AccelStep, p.cfg.AccelMax)
		}
	} else {
		next = math.Max(next, math.Max(p.prevHigh, p.prev2Hi))
		if c.High > next {
			p.rising = true
			next = p.extreme
			p.extreme = c.High
			p.accel = p.cfg.AccelStart
		} else if c.Low < p.extreme {
			p.extreme = c.Low
			p.accel = math.Min(p.accel+p.cfg.AccelStep, p.cfg.AccelMax)
		}
	}
	p.sar = next
	p.prev2Low, p.prev2Hi = p.prevLow, p.prevHigh
	p.prevLow, p.prevHigh = c.Low, c.High
}

// Rising reports the current trend leg. Only meaningful once Ready().
func (p *ParabolicSAR) Rising() bool { return p.rising }

// SAR computes the parabolic SAR series for a candle slice.
// Entries before warmup are zero.
func SAR(candles []market.Candle, cfg SARConfig) ([]float64, error) {
	ind := NewParabolicSAR(cfg)
	if len(candles) < ind.Warmup() {
		return nil, fmt.Errorf("not enough candles: need %d, got %d", ind.Warmup(), len(candles))
	}
	out := make([]float64, len(candles))
	for i, c := range candles {
		ind.Update(c)
		if ind.Ready() {
			out[i] = ind.Value()
		}
	}
	return out, nil
}

// Trend classifies the latest candle against the latest SAR value.
// Empty or short input yields Unknown rather than an error so a missing
// timeframe never aborts a decision cycle.
func Trend(candles []market.Candle, cfg SARConfig) market.Direction {
	ind := NewParabolicSAR(cfg)
	if len(candles) < ind.Warmup() {
		return market.Unknown
	}
	for _, c := range candles {
		ind.Update(c)
	}
	last := candles[len(candles)-1].Close
	switch {
	case last > ind.Value():
		return market.Long
	case last < ind.Value():
		return market.Short
	default:
		return market.Unknown
	}
}
