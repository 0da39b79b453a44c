package track

import "github.com/cwbudde/algo-pitch/window"

// TrackerConfig defines configuration for a pitch tracker.
type TrackerConfig struct {
	SampleRate       float64
	FrameSize        int
	HopSize          int
	MinFrequency     float64 // Hz, lower bound of the search range
	MaxFrequency     float64 // Hz, upper bound of the search range
	VoicingThreshold float64 // normalized autocorrelation clarity in (0, 1)
	WindowType       window.Type
}

// TrackerOption mutates a TrackerConfig.
type TrackerOption func(*TrackerConfig)

// DefaultTrackerConfig returns defaults suitable for speech at 22.05 kHz.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		SampleRate:       22050,
		FrameSize:        1024,
		HopSize:          256,
		MinFrequency:     60,
		MaxFrequency:     500,
		VoicingThreshold: 0.3,
		WindowType:       window.TypeHann,
	}
}

// WithSampleRate sets the input sample rate in Hz.
func WithSampleRate(sampleRate float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFrameSize sets the analysis frame length in samples.
func WithFrameSize(frameSize int) TrackerOption {
	return func(cfg *TrackerConfig) {
		if frameSize > 0 {
			cfg.FrameSize = frameSize
		}
	}
}

// WithHopSize sets the hop between consecutive frames in samples.
func WithHopSize(hopSize int) TrackerOption {
	return func(cfg *TrackerConfig) {
		if hopSize > 0 {
			cfg.HopSize = hopSize
		}
	}
}

// WithFreqRange sets the pitch search range in Hz.
func WithFreqRange(minHz, maxHz float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if minHz > 0 && maxHz > minHz {
			cfg.MinFrequency = minHz
			cfg.MaxFrequency = maxHz
		}
	}
}

// WithVoicingThreshold sets the minimum normalized autocorrelation clarity for
// a frame to count as voiced.
func WithVoicingThreshold(threshold float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if threshold > 0 && threshold < 1 {
			cfg.VoicingThreshold = threshold
		}
	}
}

// WithWindowType sets the analysis window function.
func WithWindowType(t window.Type) TrackerOption {
	return func(cfg *TrackerConfig) {
		cfg.WindowType = t
	}
}

// ApplyTrackerOptions applies zero or more options to the default config.
func ApplyTrackerOptions(opts ...TrackerOption) TrackerConfig {
	cfg := DefaultTrackerConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
