package gcode

import (
	"bufio"
	"strconv"
	"strings"
	"unicode"
)

// MoveType classifies a parsed G0/G1 motion.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0 traverse
	MoveFeed                    // G1 cutting move in XY
	MovePlunge                  // G1 straight down into material
	MoveRetract                 // Any straight move up
)

func (t MoveType) String() string {
	switch t {
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	default:
		return "rapid"
	}
}

// Move is one parsed linear motion in absolute machine coordinates.
type Move struct {
	Type                MoveType
	FromX, FromY, FromZ float64
	ToX, ToY, ToZ       float64
	FeedRate            float64
	Line                int // 1-based source line
}

// word is one address letter and its value, e.g. X12.5.
type word struct {
	letter byte
	value  float64
}

// Parse reads a program and returns its linear moves. Motion modes are
// modal (a bare "X10" repeats the last G0/G1), as are feed rate and the
// G90/G91 distance mode. Arcs and other commands are skipped.
func Parse(code string) []Move {
	var (
		moves    []Move
		x, y, z  float64
		feed     float64
		motion   = -1
		relative bool
	)

	sc := bufio.NewScanner(strings.NewReader(code))
	line := 0
	for sc.Scan() {
		line++
		words := tokenize(stripComments(sc.Text()))
		if len(words) == 0 {
			continue
		}

		nx, ny, nz := x, y, z
		hasAxis, home := false, false
		for _, w := range words {
			switch w.letter {
			case 'G':
				switch int(w.value) {
				case 0, 1:
					motion = int(w.value)
				case 2, 3:
					motion = -1
				case 28, 30:
					home = true
				case 90:
					relative = false
				case 91:
					relative = true
				}
			case 'F':
				feed = w.value
			case 'X':
				hasAxis = true
				nx = axis(nx, w.value, relative)
			case 'Y':
				hasAxis = true
				ny = axis(ny, w.value, relative)
			case 'Z':
				hasAxis = true
				nz = axis(nz, w.value, relative)
			}
		}
		// Homing moves go through an intermediate point the program does not state
		if !hasAxis || home || motion < 0 {
			continue
		}

		moves = append(moves, Move{
			Type:     classifyMove(motion == 0, z, nz, x != nx || y != ny),
			FromX:    x,
			FromY:    y,
			FromZ:    z,
			ToX:      nx,
			ToY:      ny,
			ToZ:      nz,
			FeedRate: feed,
			Line:     line,
		})
		x, y, z = nx, ny, nz
	}
	return moves
}

func axis(cur, v float64, relative bool) float64 {
	if relative {
		return cur + v
	}
	return v
}

// stripComments removes ";" tails and "( ... )" blocks.
func stripComments(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + " " + s[open+end+1:]
	}
	return s
}

// tokenize splits a line into address words. Malformed words are dropped.
func tokenize(s string) []word {
	var words []word
	s = strings.ToUpper(s)
	for i := 0; i < len(s); {
		c := s[i]
		if c < 'A' || c > 'Z' {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == '-' || s[j] == '+' || s[j] == '.' || unicode.IsDigit(rune(s[j]))) {
			j++
		}
		if v, err := strconv.ParseFloat(s[i+1:j], 64); err == nil {
			words = append(words, word{letter: c, value: v})
		}
		i = j
	}
	return words
}

func classifyMove(rapid bool, fromZ, toZ float64, hasXY bool) MoveType {
	dz := toZ - fromZ
	switch {
	case dz > 0.001 && !hasXY:
		return MoveRetract
	case rapid:
		return MoveRapid
	case dz < -0.001 && !hasXY:
		return MovePlunge
	default:
		return MoveFeed
	}
}
