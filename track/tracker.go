package track

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pitch/internal/parallel"
	"github.com/cwbudde/algo-pitch/pitch"
	"github.com/cwbudde/algo-pitch/window"
)

// r0Floor is the minimum lag-zero autocorrelation energy below which a frame
// is treated as silence.
const r0Floor = 1e-12

// Tracker estimates the fundamental frequency of successive analysis frames.
//
// This tracker is mono, buffer oriented, and not thread-safe; use one Tracker
// per goroutine or [TrackBatch] for parallel batches.
type Tracker struct {
	cfg TrackerConfig

	fftSize int
	minLag  int
	maxLag  int

	plan *algofft.Plan[complex128]

	windowCoeffs []float64

	// Work buffers (allocated once in newTracker).
	frame    []float64
	timeData []complex128
	freqData []complex128
	re       []float64
	im       []float64
	power    []float64
	acf      []float64
}

// NewTracker creates a pitch tracker with the given options.
func NewTracker(opts ...TrackerOption) (*Tracker, error) {
	return newTracker(ApplyTrackerOptions(opts...))
}

func newTracker(cfg TrackerConfig) (*Tracker, error) {
	if cfg.HopSize > cfg.FrameSize {
		return nil, fmt.Errorf("track: hop size %d exceeds frame size %d", cfg.HopSize, cfg.FrameSize)
	}

	minLag := int(math.Floor(cfg.SampleRate / cfg.MaxFrequency))
	if minLag < 2 {
		minLag = 2
	}

	maxLag := int(math.Ceil(cfg.SampleRate / cfg.MinFrequency))
	if maxLag >= cfg.FrameSize {
		return nil, fmt.Errorf("track: min frequency %.1f Hz needs lag %d beyond frame size %d",
			cfg.MinFrequency, maxLag, cfg.FrameSize)
	}

	// Zero-pad to at least twice the frame so the circular autocorrelation
	// equals the linear one for all searched lags.
	fftSize := nextPowerOf2(2 * cfg.FrameSize)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("track: FFT plan: %w", err)
	}

	return &Tracker{
		cfg:          cfg,
		fftSize:      fftSize,
		minLag:       minLag,
		maxLag:       maxLag,
		plan:         plan,
		windowCoeffs: window.Generate(cfg.WindowType, cfg.FrameSize),
		frame:        make([]float64, cfg.FrameSize),
		timeData:     make([]complex128, fftSize),
		freqData:     make([]complex128, fftSize),
		re:           make([]float64, fftSize),
		im:           make([]float64, fftSize),
		power:        make([]float64, fftSize),
		acf:          make([]float64, cfg.FrameSize),
	}, nil
}

// Config returns the tracker configuration.
func (t *Tracker) Config() TrackerConfig { return t.cfg }

// SampleRate returns the configured sample rate in Hz.
func (t *Tracker) SampleRate() float64 { return t.cfg.SampleRate }

// FrameSize returns the analysis frame length in samples.
func (t *Tracker) FrameSize() int { return t.cfg.FrameSize }

// HopSize returns the hop between consecutive frames in samples.
func (t *Tracker) HopSize() int { return t.cfg.HopSize }

// NumFrames returns the number of full analysis frames available in an input
// of the given length, or 0 if the input is shorter than one frame.
func (t *Tracker) NumFrames(samples int) int {
	if samples < t.cfg.FrameSize {
		return 0
	}

	return 1 + (samples-t.cfg.FrameSize)/t.cfg.HopSize
}

// Track estimates one pitch value per hop and returns the result as a contour
// of shape (1, 1, NumFrames(len(samples))). Unvoiced frames are 0.
func (t *Tracker) Track(samples []float64) (*pitch.Contour, error) {
	numFrames := t.NumFrames(len(samples))
	if numFrames == 0 {
		return nil, fmt.Errorf("track: need at least %d samples, got %d", t.cfg.FrameSize, len(samples))
	}

	out, err := pitch.NewContour(1, 1, numFrames)
	if err != nil {
		return nil, err
	}

	track := out.Formant(0, 0)

	for i := range numFrames {
		start := i * t.cfg.HopSize

		f0, _, err := t.EstimateFrame(samples[start : start+t.cfg.FrameSize])
		if err != nil {
			return nil, err
		}

		track[i] = f0
	}

	return out, nil
}

// TrackBatch runs Track over several equally long signals in parallel and
// stacks the results into a contour of shape (len(signals), 1, frames).
// Workers <= 0 selects GOMAXPROCS; each worker uses its own tracker clone.
func (t *Tracker) TrackBatch(signals [][]float64, workers int) (*pitch.Contour, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("track: empty batch")
	}

	numFrames := t.NumFrames(len(signals[0]))
	if numFrames == 0 {
		return nil, fmt.Errorf("track: need at least %d samples, got %d", t.cfg.FrameSize, len(signals[0]))
	}

	for i, s := range signals {
		if len(s) != len(signals[0]) {
			return nil, fmt.Errorf("track: signal %d has %d samples, want %d", i, len(s), len(signals[0]))
		}
	}

	out, err := pitch.NewContour(len(signals), 1, numFrames)
	if err != nil {
		return nil, err
	}

	errs := make([]error, len(signals))

	parallel.ForEach(len(signals), workers, func(b int) {
		worker, err := newTracker(t.cfg)
		if err != nil {
			errs[b] = err

			return
		}

		row, err := worker.Track(signals[b])
		if err != nil {
			errs[b] = err

			return
		}

		copy(out.Formant(b, 0), row.Formant(0, 0))
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// EstimateFrame estimates the fundamental frequency of one frame of exactly
// FrameSize samples. It returns the frequency in Hz (0 for unvoiced frames)
// and the normalized autocorrelation clarity of the winning peak. The input
// is not modified.
func (t *Tracker) EstimateFrame(frame []float64) (float64, float64, error) {
	if len(frame) != t.cfg.FrameSize {
		return 0, 0, fmt.Errorf("track: frame length %d, want %d", len(frame), t.cfg.FrameSize)
	}

	if err := t.autocorrelate(frame); err != nil {
		return 0, 0, err
	}

	r0 := t.acf[0]
	if r0 < r0Floor {
		return 0, 0, nil
	}

	bestLag, bestClarity := 0, 0.0

	for lag := t.minLag; lag <= t.maxLag; lag++ {
		clarity := t.acf[lag] / r0
		if clarity > bestClarity {
			bestLag = lag
			bestClarity = clarity
		}
	}

	if bestLag == 0 || bestClarity < t.cfg.VoicingThreshold {
		return 0, bestClarity, nil
	}

	return t.cfg.SampleRate / refineLag(t.acf, bestLag), bestClarity, nil
}

// autocorrelate fills t.acf with the linear autocorrelation of the windowed,
// mean-removed frame via forward FFT, power spectrum, and inverse FFT.
func (t *Tracker) autocorrelate(frame []float64) error {
	mean := 0.0
	for _, v := range frame {
		mean += v
	}

	mean /= float64(len(frame))

	for i, v := range frame {
		t.frame[i] = v - mean
	}

	if err := window.ApplyCoefficients(t.frame, t.frame, t.windowCoeffs); err != nil {
		return fmt.Errorf("track: window: %w", err)
	}

	for i := range t.timeData {
		if i < len(t.frame) {
			t.timeData[i] = complex(t.frame[i], 0)
		} else {
			t.timeData[i] = 0
		}
	}

	if err := t.plan.Forward(t.freqData, t.timeData); err != nil {
		return fmt.Errorf("track: forward FFT failed: %w", err)
	}

	for i, c := range t.freqData {
		t.re[i] = real(c)
		t.im[i] = imag(c)
	}

	vecmath.Power(t.power, t.re, t.im)

	for i := range t.freqData {
		t.freqData[i] = complex(t.power[i], 0)
	}

	if err := t.plan.Inverse(t.timeData, t.freqData); err != nil {
		return fmt.Errorf("track: inverse FFT failed: %w", err)
	}

	for lag := range t.acf {
		t.acf[lag] = real(t.timeData[lag])
	}

	return nil
}

// refineLag applies parabolic interpolation around the integer peak lag.
func refineLag(acf []float64, lag int) float64 {
	if lag <= 0 || lag >= len(acf)-1 {
		return float64(lag)
	}

	a, b, c := acf[lag-1], acf[lag], acf[lag+1]

	denom := a - 2*b + c
	if denom == 0 {
		return float64(lag)
	}

	delta := 0.5 * (a - c) / denom
	if delta < -0.5 || delta > 0.5 {
		return float64(lag)
	}

	return float64(lag) + delta
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
