// Command pitchinfo exercises the pitch tracker and the per-token averaging
// kernel on synthetic test tones.
//
// Usage:
//
//	pitchinfo [flags]
//
// It synthesizes a sine tone, tracks its fundamental frequency frame by
// frame, and prints the contour plus voiced-frame statistics.
//
// Examples:
//
//	pitchinfo -freq 220
//	pitchinfo -rate 44100 -freq 440 -seconds 0.5
//	pitchinfo -tokens "4,4,8"
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-pitch/pitch"
	"github.com/cwbudde/algo-pitch/track"
)

func main() {
	rate := flag.Float64("rate", 22050, "sample rate in Hz")
	freq := flag.Float64("freq", 220, "test tone frequency in Hz")
	seconds := flag.Float64("seconds", 0.5, "test tone duration in seconds")
	frameSize := flag.Int("frame", 1024, "analysis frame size in samples")
	hopSize := flag.Int("hop", 256, "hop size in samples")
	tokens := flag.String("tokens", "", "comma-separated frame durations for per-token averaging")
	flag.Parse()

	tracker, err := track.NewTracker(
		track.WithSampleRate(*rate),
		track.WithFrameSize(*frameSize),
		track.WithHopSize(*hopSize),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	samples := sine(*freq, *rate, int(*seconds*(*rate)))

	contour, err := tracker.Track(samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printContour(contour, tracker)

	if *tokens == "" {
		return
	}

	durs, err := parseDurations(*tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printAverages(contour, durs)
}

func sine(freq, rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}

	return out
}

func parseDurations(s string) (*pitch.Durations, error) {
	parts := strings.Split(s, ",")

	durs := make([]int, 0, len(parts))

	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", p)
		}

		durs = append(durs, v)
	}

	return pitch.DurationsFromSlice(durs), nil
}

func printContour(contour *pitch.Contour, tracker *track.Tracker) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Frame\tTime [s]\tF0 [Hz]\n")

	hop := float64(tracker.HopSize()) / tracker.SampleRate()
	for t, v := range contour.Formant(0, 0) {
		fmt.Fprintf(tw, "%d\t%.4f\t%.2f\n", t, float64(t)*hop, v)
	}

	tw.Flush()

	s := contour.Stats(0, 0)
	fmt.Printf("\nframes=%d voiced=%d (%.0f%%) mean=%.2f Hz stddev=%.2f Hz range=[%.2f, %.2f]\n",
		s.Frames, s.Voiced, 100*s.VoicedRatio, s.Mean, s.StdDev, s.Min, s.Max)
}

func printAverages(contour *pitch.Contour, durs *pitch.Durations) {
	avg, err := pitch.AveragePitch(contour, durs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "\nToken\tFrames\tAvg F0 [Hz]\n")

	for l, v := range avg.Formant(0, 0) {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\n", l, durs.At(0, l), v)
	}

	tw.Flush()
}
