package pitch

import "fmt"

// Unvoiced is the sentinel value marking frames with no detected pitch.
const Unvoiced = 0.0

// Contour is a batched pitch contour of shape (batch, formants, frames),
// stored row-major in a single flat buffer. A value of exactly 0 marks an
// unvoiced frame.
type Contour struct {
	batch    int
	formants int
	frames   int
	data     []float64
}

// NewContour allocates a zeroed contour of the given shape.
func NewContour(batch, formants, frames int) (*Contour, error) {
	if batch <= 0 || formants <= 0 || frames < 0 {
		return nil, fmt.Errorf("pitch: invalid contour shape (%d, %d, %d)", batch, formants, frames)
	}

	return &Contour{
		batch:    batch,
		formants: formants,
		frames:   frames,
		data:     make([]float64, batch*formants*frames),
	}, nil
}

// ContourFromSlice copies a single pitch track into a contour of shape
// (1, 1, len(frames)).
func ContourFromSlice(frames []float64) *Contour {
	c := &Contour{
		batch:    1,
		formants: 1,
		frames:   len(frames),
		data:     make([]float64, len(frames)),
	}
	copy(c.data, frames)

	return c
}

// Batch returns the number of batch rows.
func (c *Contour) Batch() int { return c.batch }

// Formants returns the number of formant channels.
func (c *Contour) Formants() int { return c.formants }

// Frames returns the number of time frames.
func (c *Contour) Frames() int { return c.frames }

// At returns the pitch value at (batch, formant, frame).
func (c *Contour) At(b, f, t int) float64 {
	return c.data[c.offset(b, f)+t]
}

// Set stores a pitch value at (batch, formant, frame).
func (c *Contour) Set(b, f, t int, v float64) {
	c.data[c.offset(b, f)+t] = v
}

// Formant returns the frame values of one formant track as a subslice view of
// the backing buffer. Mutating the result mutates the contour.
func (c *Contour) Formant(b, f int) []float64 {
	off := c.offset(b, f)

	return c.data[off : off+c.frames]
}

// Clone returns a deep copy of the contour.
func (c *Contour) Clone() *Contour {
	out := &Contour{
		batch:    c.batch,
		formants: c.formants,
		frames:   c.frames,
		data:     make([]float64, len(c.data)),
	}
	copy(out.data, c.data)

	return out
}

func (c *Contour) offset(b, f int) int {
	if b < 0 || b >= c.batch || f < 0 || f >= c.formants {
		panic(fmt.Sprintf("pitch: contour index (%d, %d) out of range (%d, %d)", b, f, c.batch, c.formants))
	}

	return (b*c.formants + f) * c.frames
}
