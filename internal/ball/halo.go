package ball

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// BaseRadius is the radius of the solid ball. Halo radii are expressed in
// the same units, so renderers scale everything by one factor.
const BaseRadius = 40.0

const (
	noiseReach = 8.0
	jitterSpan = 1.5
)

// HaloLayer parameterizes one noisy ring of the work-mode flame.
type HaloLayer struct {
	Color      string
	MaxStretch float64
	Alpha      int
	Speed      float64
}

// FireLayers are drawn outermost first, under the solid ball.
var FireLayers = [2]HaloLayer{
	{Color: "#FF4500", MaxStretch: 9, Alpha: 70, Speed: 0.2},
	{Color: "#FF8C00", MaxStretch: 4, Alpha: 100, Speed: 0.15},
}

// MaxHaloRadius bounds every radius Radii can return.
var MaxHaloRadius = BaseRadius + FireLayers[0].MaxStretch*0.6 + noiseReach + jitterSpan

// Radii returns the layer's radius for each whole degree. The outline is
// the base radius pushed out by the intensity, two phase-shifted waves
// and a little uniform jitter. A nil jitter source disables the jitter.
func (l HaloLayer) Radii(step int, intensity float64, jitter *rand.Rand) [360]float64 {
	var r [360]float64
	phase := float64(step) * l.Speed
	for deg := range r {
		a := float64(deg)
		noise := math.Sin(a*0.1+phase) * math.Cos(a*0.3-phase*0.8)
		j := 0.0
		if jitter != nil {
			j = (jitter.Float64()*2 - 1) * jitterSpan
		}
		r[deg] = BaseRadius + intensity*l.MaxStretch*0.6 + (noise+1)/2*noiseReach + j
	}
	return r
}

// AlphaAt fades the layer slightly as the flame grows.
func (l HaloLayer) AlphaAt(intensity float64) int {
	return max(20, int(float64(l.Alpha)-intensity*20))
}

// Halo computes both flame layers for the current frame.
func (b *Ball) Halo() [len(FireLayers)][360]float64 {
	var out [len(FireLayers)][360]float64
	for i, l := range FireLayers {
		out[i] = l.Radii(b.state.Step, b.state.Intensity, b.jitter)
	}
	return out
}

// FormatCountdown renders seconds as MM:SS.
func FormatCountdown(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatElapsed renders H:MM from one hour on, M:SS below.
func FormatElapsed(d time.Duration) string {
	secs := max(int(d/time.Second), 0)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d", h, m)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
