package pitch

import (
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-pitch/internal/core"
)

const tolerance = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustContour(t *testing.T, batch, formants int, tracks ...[]float64) *Contour {
	t.Helper()

	if len(tracks) != batch*formants {
		t.Fatalf("mustContour: %d tracks for shape (%d, %d)", len(tracks), batch, formants)
	}

	c, err := NewContour(batch, formants, len(tracks[0]))
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	for i, track := range tracks {
		copy(c.Formant(i/formants, i%formants), track)
	}

	return c
}

func mustDurations(t *testing.T, rows ...[]int) *Durations {
	t.Helper()

	d, err := NewDurations(len(rows), len(rows[0]))
	if err != nil {
		t.Fatalf("NewDurations: %v", err)
	}

	for b, row := range rows {
		copy(d.Row(b), row)
	}

	return d
}

func TestAveragePitch_ConcreteScenario(t *testing.T) {
	contour := ContourFromSlice([]float64{0, 2, 0, 4, 6})
	durs := DurationsFromSlice([]int{2, 1, 2})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	want := []float64{2, 0, 5}
	got := avg.Formant(0, 0)

	for l := range want {
		if !almostEqual(got[l], want[l], tolerance) {
			t.Errorf("token %d: got %g, want %g", l, got[l], want[l])
		}
	}
}

func TestAveragePitch_ZeroDurationToken(t *testing.T) {
	contour := ContourFromSlice([]float64{5, 5, 5, 5})
	durs := DurationsFromSlice([]int{2, 0, 2})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	got := avg.Formant(0, 0)

	if got[1] != 0 {
		t.Errorf("zero-duration token: got %g, want exactly 0", got[1])
	}

	if !almostEqual(got[0], 5, tolerance) || !almostEqual(got[2], 5, tolerance) {
		t.Errorf("surrounding tokens: got %v, want [5 0 5]", got)
	}
}

func TestAveragePitch_AllUnvoicedSegment(t *testing.T) {
	contour := ContourFromSlice([]float64{0, 0, 0, 7, 7})
	durs := DurationsFromSlice([]int{3, 2})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	got := avg.Formant(0, 0)

	if got[0] != 0 || math.IsNaN(got[0]) {
		t.Errorf("all-unvoiced span: got %g, want exactly 0", got[0])
	}

	if !almostEqual(got[1], 7, tolerance) {
		t.Errorf("voiced span: got %g, want 7", got[1])
	}
}

func TestAveragePitch_SingleNonzeroFrame(t *testing.T) {
	contour := ContourFromSlice([]float64{0, 0, 3.25, 0, 0, 0})
	durs := DurationsFromSlice([]int{6})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	if got := avg.At(0, 0, 0); !almostEqual(got, 3.25, tolerance) {
		t.Errorf("single voiced frame: got %g, want 3.25", got)
	}
}

// With full coverage and every frame voiced, the duration-weighted sum of the
// averages equals the total pitch mass of the contour.
func TestAveragePitch_FullCoverageSumLaw(t *testing.T) {
	track := make([]float64, 12)
	total := 0.0

	for i := range track {
		track[i] = 100 + float64(i)*3.5
		total += track[i]
	}

	contour := ContourFromSlice(track)
	durs := DurationsFromSlice([]int{3, 1, 5, 3})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	weighted := 0.0
	for l, v := range avg.Formant(0, 0) {
		weighted += float64(durs.At(0, l)) * v
	}

	if !core.NearlyEqual(weighted, total, 1e-12) {
		t.Errorf("weighted sum: got %g, want %g", weighted, total)
	}
}

func TestAveragePitch_Shape(t *testing.T) {
	cases := []struct {
		name     string
		batch    int
		formants int
		frames   int
		tokens   int
	}{
		{"mono", 1, 1, 16, 4},
		{"multi formant", 2, 3, 64, 10},
		{"more tokens than frames", 1, 1, 4, 9},
		{"no tokens", 2, 2, 8, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contour, err := NewContour(tc.batch, tc.formants, tc.frames)
			if err != nil {
				t.Fatalf("NewContour: %v", err)
			}

			durs, err := NewDurations(tc.batch, tc.tokens)
			if err != nil {
				t.Fatalf("NewDurations: %v", err)
			}

			avg, err := AveragePitch(contour, durs)
			if err != nil {
				t.Fatalf("AveragePitch: %v", err)
			}

			if avg.Batch() != tc.batch || avg.Formants() != tc.formants || avg.Frames() != tc.tokens {
				t.Errorf("shape: got (%d, %d, %d), want (%d, %d, %d)",
					avg.Batch(), avg.Formants(), avg.Frames(), tc.batch, tc.formants, tc.tokens)
			}
		})
	}
}

func TestAveragePitch_UnderCoverageIgnoresTrailingFrames(t *testing.T) {
	contour := ContourFromSlice([]float64{2, 2, 999, 999})
	durs := DurationsFromSlice([]int{2})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	if got := avg.At(0, 0, 0); !almostEqual(got, 2, tolerance) {
		t.Errorf("trailing frames leaked into average: got %g, want 2", got)
	}
}

func TestAveragePitch_OverCoverageClamps(t *testing.T) {
	contour := ContourFromSlice([]float64{4, 8})
	durs := DurationsFromSlice([]int{2, 3})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	got := avg.Formant(0, 0)

	if !almostEqual(got[0], 6, tolerance) {
		t.Errorf("covered span: got %g, want 6", got[0])
	}

	// The second token starts past the contour end; its span clamps to empty.
	if got[1] != 0 {
		t.Errorf("clamped span: got %g, want 0", got[1])
	}
}

func TestAveragePitch_FormantsShareSpans(t *testing.T) {
	contour := mustContour(t, 1, 2,
		[]float64{10, 20, 30, 40},
		[]float64{0, 2, 0, 8},
	)
	durs := DurationsFromSlice([]int{2, 2})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	want := [][]float64{{15, 35}, {2, 8}}

	for f, row := range want {
		for l, w := range row {
			if got := avg.At(0, f, l); !almostEqual(got, w, tolerance) {
				t.Errorf("formant %d token %d: got %g, want %g", f, l, got, w)
			}
		}
	}
}

func TestAveragePitch_BatchRowsIndependent(t *testing.T) {
	contour := mustContour(t, 2, 1,
		[]float64{1, 1, 9, 9},
		[]float64{0, 4, 0, 0},
	)
	durs := mustDurations(t, []int{2, 2}, []int{3, 1})

	avg, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	want := [][]float64{{1, 9}, {4, 0}}

	for b, row := range want {
		for l, w := range row {
			if got := avg.At(b, 0, l); !almostEqual(got, w, tolerance) {
				t.Errorf("batch %d token %d: got %g, want %g", b, l, got, w)
			}
		}
	}
}

func TestAveragePitch_InputsUnmodified(t *testing.T) {
	contour := ContourFromSlice([]float64{0, 2, 0, 4, 6})
	durs := DurationsFromSlice([]int{2, 1, 2})

	before := append([]float64(nil), contour.Formant(0, 0)...)

	if _, err := AveragePitch(contour, durs); err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	for i, v := range contour.Formant(0, 0) {
		if v != before[i] {
			t.Fatalf("input contour mutated at frame %d: %g -> %g", i, before[i], v)
		}
	}
}

func TestAveragePitch_NegativeDuration(t *testing.T) {
	contour := ContourFromSlice([]float64{1, 2, 3})
	durs := DurationsFromSlice([]int{2, -1})

	_, err := AveragePitch(contour, durs)
	if err == nil {
		t.Fatal("expected error for negative duration")
	}

	if !strings.Contains(err.Error(), "negative duration") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAveragePitch_BatchMismatch(t *testing.T) {
	contour, err := NewContour(2, 1, 8)
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	durs, err := NewDurations(3, 4)
	if err != nil {
		t.Fatalf("NewDurations: %v", err)
	}

	if _, err := AveragePitch(contour, durs); err == nil {
		t.Fatal("expected error for batch mismatch")
	}
}

func TestAveragePitchInto_ReusesDestination(t *testing.T) {
	contour := ContourFromSlice([]float64{0, 2, 0, 4, 6})
	durs := DurationsFromSlice([]int{2, 1, 2})

	dst, err := NewContour(1, 1, 3)
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	// Stale values must be overwritten, including the zero-count token.
	for l := range dst.Formant(0, 0) {
		dst.Set(0, 0, l, -1)
	}

	if err := AveragePitchInto(dst, contour, durs); err != nil {
		t.Fatalf("AveragePitchInto: %v", err)
	}

	want := []float64{2, 0, 5}
	for l, w := range want {
		if got := dst.At(0, 0, l); !almostEqual(got, w, tolerance) {
			t.Errorf("token %d: got %g, want %g", l, got, w)
		}
	}
}

func TestAveragePitchInto_ShapeMismatch(t *testing.T) {
	contour := ContourFromSlice([]float64{1, 2, 3})
	durs := DurationsFromSlice([]int{3})

	dst, err := NewContour(1, 2, 1)
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	if err := AveragePitchInto(dst, contour, durs); err == nil {
		t.Fatal("expected error for destination shape mismatch")
	}
}

func TestAveragePitchParallel_MatchesSequential(t *testing.T) {
	const (
		batch    = 7
		formants = 2
		frames   = 160
		tokens   = 23
	)

	contour, err := NewContour(batch, formants, frames)
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	durs, err := NewDurations(batch, tokens)
	if err != nil {
		t.Fatalf("NewDurations: %v", err)
	}

	// Deterministic pseudo-random fill with interleaved unvoiced frames.
	state := uint64(1)
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state >> 33
	}

	for b := range batch {
		for f := range formants {
			track := contour.Formant(b, f)
			for i := range track {
				if next()%4 == 0 {
					track[i] = 0
				} else {
					track[i] = 80 + float64(next()%400)
				}
			}
		}

		row := durs.Row(b)
		for l := range row {
			row[l] = int(next() % 9)
		}
	}

	sequential, err := AveragePitch(contour, durs)
	if err != nil {
		t.Fatalf("AveragePitch: %v", err)
	}

	for _, workers := range []int{0, 1, 3, 16} {
		parallelAvg, err := AveragePitchParallel(contour, durs, workers)
		if err != nil {
			t.Fatalf("AveragePitchParallel(workers=%d): %v", workers, err)
		}

		for b := range batch {
			for f := range formants {
				for l := range tokens {
					got := parallelAvg.At(b, f, l)
					want := sequential.At(b, f, l)

					if got != want {
						t.Fatalf("workers=%d (%d, %d, %d): got %g, want %g", workers, b, f, l, got, want)
					}
				}
			}
		}
	}
}

func TestAveragePitchParallel_NegativeDuration(t *testing.T) {
	contour, err := NewContour(2, 1, 4)
	if err != nil {
		t.Fatalf("NewContour: %v", err)
	}

	durs := mustDurations(t, []int{2, 2}, []int{1, -3})

	if _, err := AveragePitchParallel(contour, durs, 4); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
