package pitch

import (
	"fmt"

	"github.com/cwbudde/algo-pitch/align"
	"github.com/cwbudde/algo-pitch/internal/core"
	"github.com/cwbudde/algo-pitch/internal/parallel"
)

// AveragePitch reduces a frame-rate contour to one value per token. For every
// (batch, formant, token) triple the result is the arithmetic mean of the
// voiced (non-zero) frames inside the token's frame span; tokens whose span
// contains no voiced frame yield exactly 0, never NaN.
//
// Token spans follow the half-open prefix-sum convention of [align.Spans].
// Frame indices beyond the contour are ignored: a row whose durations cover
// more frames than the contour provides is truncated, not rejected.
//
// The inputs are not modified. Batch-size mismatch and negative durations
// return an error.
func AveragePitch(contour *Contour, durs *Durations) (*Contour, error) {
	out, err := NewContour(contour.batch, contour.formants, durs.tokens)
	if err != nil {
		return nil, err
	}

	if err := AveragePitchInto(out, contour, durs); err != nil {
		return nil, err
	}

	return out, nil
}

// AveragePitchInto is the buffer-reusing form of [AveragePitch]. The
// destination must have the contour's batch and formant counts and one frame
// slot per token.
func AveragePitchInto(dst, contour *Contour, durs *Durations) error {
	if err := checkAverageShapes(dst, contour, durs); err != nil {
		return err
	}

	sums := make([]float64, contour.frames+1)
	counts := make([]int, contour.frames+1)

	for b := range contour.batch {
		starts, ends, err := align.CumulativeSpans(durs.Row(b))
		if err != nil {
			return fmt.Errorf("pitch: batch row %d: %w", b, err)
		}

		for f := range contour.formants {
			averageTrack(dst.Formant(b, f), contour.Formant(b, f), starts, ends, sums, counts)
		}
	}

	return nil
}

// AveragePitchParallel computes [AveragePitch] with batch rows distributed
// over at most workers goroutines (workers <= 0 selects GOMAXPROCS). Rows are
// independent, so the result is identical to the sequential form.
func AveragePitchParallel(contour *Contour, durs *Durations, workers int) (*Contour, error) {
	out, err := NewContour(contour.batch, contour.formants, durs.tokens)
	if err != nil {
		return nil, err
	}

	if err := checkAverageShapes(out, contour, durs); err != nil {
		return nil, err
	}

	// Validate every row up front so the parallel phase cannot fail.
	rowSpans := make([][2][]int, contour.batch)

	for b := range contour.batch {
		starts, ends, err := align.CumulativeSpans(durs.Row(b))
		if err != nil {
			return nil, fmt.Errorf("pitch: batch row %d: %w", b, err)
		}

		rowSpans[b] = [2][]int{starts, ends}
	}

	parallel.ForEach(contour.batch, workers, func(b int) {
		sums := make([]float64, contour.frames+1)
		counts := make([]int, contour.frames+1)
		starts, ends := rowSpans[b][0], rowSpans[b][1]

		for f := range contour.formants {
			averageTrack(out.Formant(b, f), contour.Formant(b, f), starts, ends, sums, counts)
		}
	})

	return out, nil
}

// averageTrack fills dst[l] with the voiced-frame mean of track over the span
// [starts[l], ends[l]). sums and counts are scratch prefix-sum buffers of
// length len(track)+1; slot 0 stays zero so a span reduces to two reads and a
// subtraction with no first-segment special case.
func averageTrack(dst, track []float64, starts, ends []int, sums []float64, counts []int) {
	sums[0] = 0
	counts[0] = 0

	for t, v := range track {
		sums[t+1] = sums[t] + v

		counts[t+1] = counts[t]
		if v != Unvoiced {
			counts[t+1]++
		}
	}

	frames := len(track)

	for l := range dst {
		s := core.ClampInt(starts[l], 0, frames)
		e := core.ClampInt(ends[l], 0, frames)

		n := counts[e] - counts[s]
		if n == 0 {
			dst[l] = 0

			continue
		}

		dst[l] = (sums[e] - sums[s]) / float64(n)
	}
}

func checkAverageShapes(dst, contour *Contour, durs *Durations) error {
	if contour.batch != durs.batch {
		return fmt.Errorf("pitch: contour batch %d does not match durations batch %d", contour.batch, durs.batch)
	}

	if dst.batch != contour.batch || dst.formants != contour.formants || dst.frames != durs.tokens {
		return fmt.Errorf("pitch: destination shape (%d, %d, %d) does not match (%d, %d, %d)",
			dst.batch, dst.formants, dst.frames, contour.batch, contour.formants, durs.tokens)
	}

	return nil
}
