// Package scramble shuffles structures, such as sentences, inside their
// enclosing structures, such as texts. Units never move across the
// boundaries of the enclosing structure.
//
// The input may not have intermediate structures between the enclosing
// structure and the units: when sentences are scrambled within texts, a
// paragraph marker is carried along inside whichever sentence unit it
// follows.
package scramble

import (
	"io"
	"math/rand/v2"

	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// Defaults for the scrambler.
const (
	DefaultUnit   = "sentence"
	DefaultWithin = "text"
	DefaultSeed   = 2017
)

// Scrambler buffers the units of one enclosing structure at a time and
// writes them out in shuffled order.
type Scrambler struct {
	unit   string
	within string
	rnd    *rand.Rand
}

// New creates a scrambler. Seed 0 requests non-reproducible output; any
// other seed makes the output a function of the input.
func New(unit, within string, seed int64) *Scrambler {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(uint64(seed), uint64(seed))
	}
	return &Scrambler{unit: unit, within: within, rnd: rand.New(src)}
}

// Process copies lines to w, shuffling units inside each enclosing
// structure. Lines are written byte for byte.
func (s *Scrambler) Process(lines stream.Lines, w io.Writer) error {
	var (
		collecting bool
		lead       []string
		units      [][]string
		current    []string
	)
	err := stream.Each(lines, func(line string) error {
		if !collecting {
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
			if vrt.IsOpenOf(line, s.within) {
				collecting = true
				lead, units, current = nil, nil, nil
			}
			return nil
		}

		switch {
		case vrt.IsCloseOf(line, s.within):
			if current != nil {
				units = append(units, current)
			}
			collecting = false
			if err := writeLines(w, lead); err != nil {
				return err
			}
			for _, unit := range s.Shuffle(units) {
				if err := writeLines(w, unit); err != nil {
					return err
				}
			}
			_, err := io.WriteString(w, line)
			return err
		case vrt.IsOpenOf(line, s.unit):
			if current != nil {
				units = append(units, current)
			}
			current = []string{line}
		case current == nil:
			// before the first unit of this structure
			lead = append(lead, line)
		default:
			current = append(current, line)
		}
		return nil
	})
	if err != nil || !collecting {
		return err
	}
	// Input ended inside an enclosing structure: keep what was buffered,
	// in input order.
	if current != nil {
		units = append(units, current)
	}
	if err := writeLines(w, lead); err != nil {
		return err
	}
	for _, unit := range units {
		if err := writeLines(w, unit); err != nil {
			return err
		}
	}
	return nil
}

// Shuffle permutes units in place and returns them.
func (s *Scrambler) Shuffle(units [][]string) [][]string {
	s.rnd.Shuffle(len(units), func(i, j int) {
		units[i], units[j] = units[j], units[i]
	})
	return units
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
