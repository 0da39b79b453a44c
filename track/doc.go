// Package track provides frame-based fundamental-frequency estimation
// producing pitch contours.
//
// The [Tracker] slides an analysis window over the input, computes the
// normalized autocorrelation of each frame via FFT (Wiener-Khinchin), and
// picks the strongest peak in the configured lag range. Frames whose peak
// clarity falls below the voicing threshold are emitted as unvoiced (0).
package track
