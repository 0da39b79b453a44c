package pitch

// InterpolateUnvoiced returns a copy of the contour with unvoiced gaps filled
// per formant track: interior gaps are linearly interpolated between the
// surrounding voiced frames, leading and trailing gaps are held at the nearest
// voiced value. Fully unvoiced tracks are copied unchanged.
func InterpolateUnvoiced(c *Contour) *Contour {
	out := c.Clone()

	for b := range out.batch {
		for f := range out.formants {
			fillTrack(out.Formant(b, f))
		}
	}

	return out
}

func fillTrack(track []float64) {
	prev := -1 // index of the last voiced frame seen

	for t, v := range track {
		if v == Unvoiced {
			continue
		}

		switch {
		case prev < 0:
			// Leading gap: hold the first voiced value.
			for i := range t {
				track[i] = v
			}
		case prev < t-1:
			// Interior gap: linear ramp between the voiced endpoints.
			step := (v - track[prev]) / float64(t-prev)
			for i := prev + 1; i < t; i++ {
				track[i] = track[prev] + step*float64(i-prev)
			}
		}

		prev = t
	}

	if prev < 0 {
		return
	}

	// Trailing gap: hold the last voiced value.
	for i := prev + 1; i < len(track); i++ {
		track[i] = track[prev]
	}
}
