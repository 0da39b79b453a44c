package pitch

import "fmt"

// Normalize maps every voiced frame to (v - mean) / stddev in place, leaving
// unvoiced frames at 0. A voiced frame whose value equals mean normalizes to
// exactly 0 and becomes indistinguishable from an unvoiced frame; callers that
// need to round-trip should keep a voicing mask.
func (c *Contour) Normalize(mean, stddev float64) error {
	if stddev <= 0 {
		return fmt.Errorf("pitch: normalization stddev must be > 0: %f", stddev)
	}

	for i, v := range c.data {
		if v != Unvoiced {
			c.data[i] = (v - mean) / stddev
		}
	}

	return nil
}

// Denormalize maps every voiced frame to v*stddev + mean in place, inverting
// [Contour.Normalize] for frames that stayed voiced.
func (c *Contour) Denormalize(mean, stddev float64) error {
	if stddev <= 0 {
		return fmt.Errorf("pitch: normalization stddev must be > 0: %f", stddev)
	}

	for i, v := range c.data {
		if v != Unvoiced {
			c.data[i] = v*stddev + mean
		}
	}

	return nil
}
