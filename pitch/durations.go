package pitch

import "fmt"

// Durations is a batched token-duration sequence of shape (batch, tokens),
// stored row-major. Entry (b, l) is the number of consecutive frames aligned
// to token l of batch row b.
type Durations struct {
	batch  int
	tokens int
	data   []int
}

// NewDurations allocates a zeroed duration sequence of the given shape.
func NewDurations(batch, tokens int) (*Durations, error) {
	if batch <= 0 || tokens < 0 {
		return nil, fmt.Errorf("pitch: invalid durations shape (%d, %d)", batch, tokens)
	}

	return &Durations{
		batch:  batch,
		tokens: tokens,
		data:   make([]int, batch*tokens),
	}, nil
}

// DurationsFromSlice copies a single duration row into a sequence of shape
// (1, len(durs)).
func DurationsFromSlice(durs []int) *Durations {
	d := &Durations{
		batch:  1,
		tokens: len(durs),
		data:   make([]int, len(durs)),
	}
	copy(d.data, durs)

	return d
}

// Batch returns the number of batch rows.
func (d *Durations) Batch() int { return d.batch }

// Tokens returns the number of tokens per row.
func (d *Durations) Tokens() int { return d.tokens }

// At returns the duration of token l in batch row b.
func (d *Durations) At(b, l int) int {
	return d.Row(b)[l]
}

// Set stores the duration of token l in batch row b.
func (d *Durations) Set(b, l, v int) {
	d.Row(b)[l] = v
}

// Row returns the durations of one batch row as a subslice view of the
// backing buffer. Mutating the result mutates the sequence.
func (d *Durations) Row(b int) []int {
	if b < 0 || b >= d.batch {
		panic(fmt.Sprintf("pitch: durations row %d out of range %d", b, d.batch))
	}

	off := b * d.tokens

	return d.data[off : off+d.tokens]
}

// FrameCount returns the total number of frames covered by batch row b.
// Negative entries count as zero.
func (d *Durations) FrameCount(b int) int {
	total := 0

	for _, v := range d.Row(b) {
		if v > 0 {
			total += v
		}
	}

	return total
}
