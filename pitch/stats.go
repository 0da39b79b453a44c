package pitch

import "math"

// VoicedStats holds single-pass statistics over the voiced frames of one
// formant track.
type VoicedStats struct {
	Frames      int // total frames in the track
	Voiced      int // frames with non-zero pitch
	VoicedRatio float64
	Mean        float64
	StdDev      float64
	Min         float64
	Max         float64
}

// Stats computes voiced-frame statistics for formant f of batch row b using
// Welford's online algorithm for the variance. A fully unvoiced track yields
// zero Mean/StdDev/Min/Max.
func (c *Contour) Stats(b, f int) VoicedStats {
	track := c.Formant(b, f)

	s := VoicedStats{Frames: len(track)}

	var (
		mean float64
		m2   float64
	)

	for _, v := range track {
		if v == Unvoiced {
			continue
		}

		s.Voiced++

		delta := v - mean
		mean += delta / float64(s.Voiced)
		m2 += delta * (v - mean)

		if s.Voiced == 1 {
			s.Min = v
			s.Max = v

			continue
		}

		if v < s.Min {
			s.Min = v
		}

		if v > s.Max {
			s.Max = v
		}
	}

	if s.Voiced == 0 {
		return s
	}

	s.VoicedRatio = float64(s.Voiced) / float64(s.Frames)
	s.Mean = mean
	s.StdDev = math.Sqrt(m2 / float64(s.Voiced))

	return s
}
