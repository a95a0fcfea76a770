package render

import "math"

// Oscillator produces the latent input for successive frames:
// z(t) = Amplitude * sin(2*pi*t/Period).
type Oscillator struct {
	Amplitude float64
	Period    int // frames per cycle; default 120

	t int
}

// Step returns the latent value for the current frame and advances by one.
func (o *Oscillator) Step() float64 {
	z := o.At(o.t)
	o.t++
	return z
}

// At returns the latent value at frame t without advancing.
func (o *Oscillator) At(t int) float64 {
	period := o.Period
	if period <= 0 {
		period = 120
	}
	return o.Amplitude * math.Sin(2*math.Pi*float64(t%period)/float64(period))
}

// Frame is the index of the next frame Step will produce.
func (o *Oscillator) Frame() int { return o.t }

// Seek sets the index of the next frame, so a rebuilt oscillator can continue
// where the previous one stopped.
func (o *Oscillator) Seek(t int) { o.t = max(t, 0) }
