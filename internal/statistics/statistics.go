// Package statistics accumulates per-player results over many hands.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// HandResult is one player's outcome of a single hand
type HandResult struct {
	NetBB          float64 // chips won or lost, in big blinds
	Position       int     // seats after the button, 0 is the button
	WentToShowdown bool
	PotBB          float64
}

// PositionStats tracks results for one position relative to the button
type PositionStats struct {
	Hands int
	SumBB float64
}

// Statistics tracks a player's results in big blinds per hand
type Statistics struct {
	Name   string
	Hands  int
	SumBB  float64
	SumBB2 float64
	Values []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64

	Positions []PositionStats
	MaxPotBB  float64
	Rebuys    int
}

// New creates empty statistics for a player at a table with the given seat count
func New(name string, seats int) *Statistics {
	return &Statistics{Name: name, Positions: make([]PositionStats, seats)}
}

// Add records one hand
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)

	if r.WentToShowdown {
		s.ShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.NonShowdownWins++
		}
	}

	if r.Position >= 0 && r.Position < len(s.Positions) {
		s.Positions[r.Position].Hands++
		s.Positions[r.Position].SumBB += r.NetBB
	}
	s.MaxPotBB = math.Max(s.MaxPotBB, r.PotBB)
}

// Mean returns the average result in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the bounds of the 95% interval around the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	margin := 1.96 * s.StdError()
	return s.Mean() - margin, s.Mean() + margin
}

func (s *Statistics) sorted() []float64 {
	sorted := append([]float64(nil), s.Values...)
	sort.Float64s(sorted)
	return sorted
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile interpolates the value at p, between 0 and 1
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	index := p * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// PositionMean returns the average result from one position
func (s *Statistics) PositionMean(position int) float64 {
	if position < 0 || position >= len(s.Positions) || s.Positions[position].Hands == 0 {
		return 0
	}
	ps := s.Positions[position]
	return ps.SumBB / float64(ps.Hands)
}

// Validate checks that the tallies agree with each other
func (s *Statistics) Validate() error {
	if math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("%s: ledger mismatch: total %.6f, showdown %.6f, non-showdown %.6f",
			s.Name, s.SumBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("%s: %d values recorded for %d hands", s.Name, len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("%s: %d wins in %d hands", s.Name, wins, s.Hands)
	}
	positioned := 0
	for _, ps := range s.Positions {
		positioned += ps.Hands
	}
	if positioned != s.Hands {
		return fmt.Errorf("%s: %d hands by position, %d in total", s.Name, positioned, s.Hands)
	}
	return nil
}
