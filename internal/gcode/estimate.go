package gcode

import (
	"math"
	"time"
)

// RapidRate is the traverse speed assumed for G0 moves, mm/min.
const RapidRate = 5000.0

// Stats summarises a parsed program.
type Stats struct {
	CutLength   float64 // Feed moves in XY, mm
	RapidLength float64 // Rapid moves, mm
	Plunges     int
	Duration    time.Duration // Estimated machining time
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.CutLength += other.CutLength
	s.RapidLength += other.RapidLength
	s.Plunges += other.Plunges
	s.Duration += other.Duration
}

// Estimate walks the moves of a program and estimates its run time from the
// programmed feed rates. Moves without a feed rate use RapidRate.
func Estimate(moves []Move) Stats {
	var st Stats
	var minutes float64
	for _, m := range moves {
		dist := math.Sqrt(sq(m.ToX-m.FromX) + sq(m.ToY-m.FromY) + sq(m.ToZ-m.FromZ))
		rate := m.FeedRate
		switch m.Type {
		case MoveRapid, MoveRetract:
			st.RapidLength += dist
			rate = RapidRate
		case MovePlunge:
			st.Plunges++
		case MoveFeed:
			st.CutLength += math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
		}
		if rate <= 0 {
			rate = RapidRate
		}
		minutes += dist / rate
	}
	st.Duration = time.Duration(minutes * float64(time.Minute))
	return st
}

// EstimateProgram parses code and estimates it.
func EstimateProgram(code string) Stats {
	return Estimate(Parse(code))
}

func sq(v float64) float64 { return v * v }
