package loadgen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

var ErrUnknownPattern = errors.New("unknown load pattern")

// Pattern shapes a base load at a point in time.
type Pattern interface {
	Apply(base float64, at time.Time) float64
	Name() string
}

func PatternNames() []string {
	return []string{"steady", "daily", "weekly", "random", "gradual_rise", "sine_wave"}
}

// ParsePattern builds a pattern. start anchors time-relative patterns and
// seed makes the random pattern reproducible.
func ParsePattern(name string, start time.Time, seed int64) (Pattern, error) {
	switch name {
	case "steady":
		return &SteadyPattern{}, nil
	case "daily":
		return &DailyPattern{}, nil
	case "weekly":
		return &WeeklyPattern{}, nil
	case "random":
		return NewRandomPattern(seed), nil
	case "gradual_rise":
		return &GradualRisePattern{Start: start}, nil
	case "sine_wave":
		return &SineWavePattern{Start: start}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
}

// SteadyPattern - constant load
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(base float64, _ time.Time) float64 {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - demand peaks in the morning and evening, trough overnight
type DailyPattern struct{}

func dailyModifier(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return 1.3
	case hour >= 17 && hour <= 20:
		return 1.4
	case hour >= 10 && hour <= 16:
		return 1.1
	case hour >= 0 && hour <= 5:
		return 0.6
	default:
		return 1.0
	}
}

func (p *DailyPattern) Apply(base float64, at time.Time) float64 {
	return base * dailyModifier(at.Hour())
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern - daily cycle with lower weekend demand
type WeeklyPattern struct{}

func (p *WeeklyPattern) Apply(base float64, at time.Time) float64 {
	modifier := dailyModifier(at.Hour())
	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		modifier *= 0.75
	}
	return base * modifier
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// RandomPattern - unpredictable spikes and drops
type RandomPattern struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPattern(seed int64) *RandomPattern {
	return &RandomPattern{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPattern) Apply(base float64, _ time.Time) float64 {
	p.mu.Lock()
	modifier := 0.5 + p.rng.Float64()
	p.mu.Unlock()
	return base * modifier
}

func (p *RandomPattern) Name() string {
	return "random"
}

// GradualRisePattern - 1% growth per day since Start, capped at +50%
type GradualRisePattern struct {
	Start time.Time
}

func (p *GradualRisePattern) Apply(base float64, at time.Time) float64 {
	days := at.Sub(p.Start).Hours() / 24
	increase := math.Max(0, math.Min(days, 50))
	return base * (1 + increase/100)
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern - smooth oscillation around base
type SineWavePattern struct {
	Start     time.Time
	Period    time.Duration
	Amplitude float64 // fraction of base
}

func (p *SineWavePattern) Apply(base float64, at time.Time) float64 {
	period := p.Period
	if period == 0 {
		period = 24 * time.Hour
	}
	amplitude := p.Amplitude
	if amplitude == 0 {
		amplitude = 0.2
	}

	phase := float64(at.Sub(p.Start)) / float64(period) * 2 * math.Pi
	return base * (1 + amplitude*math.Sin(phase))
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}
