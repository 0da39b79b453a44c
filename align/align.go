// Package align provides token-to-frame alignment arithmetic for duration
// driven sequence models: prefix-sum span computation, duration validation,
// and length regulation (expanding per-token values to frame rate).
//
// A duration sequence assigns each token a count of consecutive frames. Token
// i covers the half-open frame interval [sum(durs[:i]), sum(durs[:i+1])).
package align

import (
	"errors"
	"fmt"
)

// ErrOverCoverage reports that a duration sequence claims more frames than the
// signal provides. See [Validate].
var ErrOverCoverage = errors.New("align: durations cover more frames than available")

// Span is a half-open frame interval [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of frames in the span.
func (s Span) Len() int { return s.End - s.Start }

// CumulativeSpans returns the span boundaries for each token as two parallel
// slices: starts[i] and ends[i] delimit token i. The construction is a single
// inclusive prefix sum; starts is the same sum shifted right by one with a
// leading zero, so starts[0] == 0 and starts[i] == ends[i-1].
func CumulativeSpans(durs []int) (starts, ends []int, err error) {
	starts = make([]int, len(durs))
	ends = make([]int, len(durs))

	acc := 0

	for i, d := range durs {
		if d < 0 {
			return nil, nil, fmt.Errorf("align: negative duration %d at token %d", d, i)
		}

		starts[i] = acc
		acc += d
		ends[i] = acc
	}

	return starts, ends, nil
}

// Spans returns the half-open frame interval covered by each token.
func Spans(durs []int) ([]Span, error) {
	starts, ends, err := CumulativeSpans(durs)
	if err != nil {
		return nil, err
	}

	out := make([]Span, len(durs))
	for i := range out {
		out[i] = Span{Start: starts[i], End: ends[i]}
	}

	return out, nil
}

// TotalFrames returns the number of frames covered by the duration sequence.
// Negative durations count as zero.
func TotalFrames(durs []int) int {
	total := 0

	for _, d := range durs {
		if d > 0 {
			total += d
		}
	}

	return total
}

// Validate checks a duration sequence against an available frame count. It
// rejects negative durations and returns [ErrOverCoverage] (wrapped with the
// counts) when the sequence claims more than frames frames. Under-coverage is
// legal: trailing frames simply belong to no token.
func Validate(durs []int, frames int) error {
	total := 0

	for i, d := range durs {
		if d < 0 {
			return fmt.Errorf("align: negative duration %d at token %d", d, i)
		}

		total += d
	}

	if total > frames {
		return fmt.Errorf("%w: %d > %d", ErrOverCoverage, total, frames)
	}

	return nil
}

// Expand performs length regulation: each per-token value is repeated over the
// token's frame span, producing a frame-rate sequence of TotalFrames(durs)
// values. It is the inverse direction of per-token averaging.
func Expand(values []float64, durs []int) ([]float64, error) {
	if len(values) != len(durs) {
		return nil, fmt.Errorf("align: %d values for %d durations", len(values), len(durs))
	}

	out := make([]float64, 0, TotalFrames(durs))

	for i, d := range durs {
		if d < 0 {
			return nil, fmt.Errorf("align: negative duration %d at token %d", d, i)
		}

		for range d {
			out = append(out, values[i])
		}
	}

	return out, nil
}
