package tui

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sadopc/dayball/internal/ball"
)

// The ball is drawn on a fixed character grid. A terminal cell is about
// twice as tall as it is wide, so columns count half a row.
const (
	ballRows  = 15
	ballCols  = 31
	ballScale = 5.0 / ball.BaseRadius // rows per radius unit

	ringRadius = ball.BaseRadius - 4
	ringHalf   = 4.0
	tileCorner = ball.BaseRadius * 2 * 0.24
)

type cell struct {
	ch     rune
	fg, bg string
}

type ballCanvas [ballRows][ballCols]cell

func newBallCanvas() *ballCanvas {
	var c ballCanvas
	for r := range c {
		for col := range c[r] {
			c[r][col] = cell{ch: ' '}
		}
	}
	return &c
}

// polar returns the distance of a cell from the centre in radius units,
// its angle in degrees (0 = east, clockwise on screen) and its clock
// position in [0, 1) starting at twelve o'clock.
func polar(r, col int) (dist, deg, clock float64) {
	dy := float64(r - ballRows/2)
	dx := float64(col-ballCols/2) / 2
	dist = math.Hypot(dx, dy) / ballScale
	deg = math.Mod(math.Atan2(dy, dx)*180/math.Pi+360, 360)
	clock = math.Mod(math.Atan2(dx, -dy)/(2*math.Pi)+1, 1)
	return dist, deg, clock
}

// diagonal is the position of a cell along the top-left to bottom-right
// gradient axis.
func diagonal(r, col int) float64 {
	return (float64(col)/(ballCols-1) + float64(r)/(ballRows-1)) / 2
}

func blend(from, to string, t float64) string {
	t = math.Max(0, math.Min(1, t))
	return colorful.MustParseHex(from).BlendRgb(colorful.MustParseHex(to), t).Hex()
}

// fade stands in for alpha: the colour is mixed into the background.
func fade(hex string, alpha int) string {
	return blend(hexBg, hex, float64(alpha)/100)
}

// text writes s centred on row. Text on a solid cell takes that cell's
// colour as its background.
func (c *ballCanvas) text(row int, s, fg string) {
	runes := []rune(s)
	start := (ballCols - len(runes)) / 2
	for i, ch := range runes {
		col := start + i
		if col < 0 || col >= ballCols {
			continue
		}
		under := c[row][col]
		bg := under.bg
		if under.ch == '█' {
			bg = under.fg
		}
		c[row][col] = cell{ch: ch, fg: fg, bg: bg}
	}
}

func (c *ballCanvas) render() string {
	var b strings.Builder
	for r := range c {
		if r > 0 {
			b.WriteByte('\n')
		}
		row := c[r][:]
		for len(row) > 0 {
			n := 1
			for n < len(row) && row[n].fg == row[0].fg && row[n].bg == row[0].bg {
				n++
			}
			var run strings.Builder
			for _, cl := range row[:n] {
				run.WriteRune(cl.ch)
			}
			style := lipgloss.NewStyle()
			if row[0].fg != "" {
				style = style.Foreground(lipgloss.Color(row[0].fg))
			}
			if row[0].bg != "" {
				style = style.Background(lipgloss.Color(row[0].bg))
			}
			b.WriteString(style.Render(run.String()))
			row = row[n:]
		}
	}
	return b.String()
}

// renderBall draws one frame for the given timer snapshot.
func renderBall(b *ball.Ball, now time.Time) string {
	c := newBallCanvas()
	switch b.Mode() {
	case ball.Work:
		drawFire(c, b.Intensity(), b.Halo())
		c.text(5, "WORK", hexBallText)
		c.text(8, ball.FormatElapsed(b.Elapsed()), hexBallText)
	case ball.Focus:
		drawRing(c, b.Progress())
		c.text(7, ball.FormatCountdown(b.RemainingSeconds()), hexRingAccent)
	default:
		drawTile(c)
		c.text(5, strings.ToUpper(now.Format("Jan")), hexBallText)
		c.text(7, now.Format("2"), hexBallText)
	}
	return c.render()
}

func drawFire(c *ballCanvas, intensity float64, halo [len(ball.FireLayers)][360]float64) {
	outer, inner := ball.FireLayers[0], ball.FireLayers[1]
	outerHex := fade(outer.Color, outer.AlphaAt(intensity))
	innerHex := fade(inner.Color, inner.AlphaAt(intensity))
	for r := range c {
		for col := range c[r] {
			dist, deg, _ := polar(r, col)
			d := int(deg) % 360
			switch {
			case dist <= ball.BaseRadius-2:
				c[r][col] = cell{ch: '█', fg: blend(hexFireStart, hexFireEnd, diagonal(r, col))}
			case dist <= halo[1][d]:
				c[r][col] = cell{ch: '▓', fg: innerHex}
			case dist <= halo[0][d]:
				c[r][col] = cell{ch: '░', fg: outerHex}
			}
		}
	}
}

// drawRing marks the remaining part of the countdown clockwise from
// twelve o'clock; the rest of the ring is the consumed track.
func drawRing(c *ballCanvas, progress float64) {
	for r := range c {
		for col := range c[r] {
			dist, _, clock := polar(r, col)
			switch {
			case math.Abs(dist-ringRadius) <= ringHalf:
				if clock < progress {
					c[r][col] = cell{ch: '█', fg: hexRingAccent}
				} else {
					c[r][col] = cell{ch: '░', fg: hexRingTrack}
				}
			case dist < ringRadius-ringHalf:
				c[r][col] = cell{ch: '█', fg: "#EEF2FF"}
			}
		}
	}
}

// drawTile fills the rounded square shown while idle.
func drawTile(c *ballCanvas) {
	inset := ball.BaseRadius - tileCorner
	for r := range c {
		for col := range c[r] {
			x := math.Abs(float64(col-ballCols/2)/2) / ballScale
			y := math.Abs(float64(r-ballRows/2)) / ballScale
			qx, qy := math.Max(x-inset, 0), math.Max(y-inset, 0)
			if x <= ball.BaseRadius && y <= ball.BaseRadius && math.Hypot(qx, qy) <= tileCorner {
				c[r][col] = cell{ch: '█', fg: blend(hexTileStart, hexTileEnd, diagonal(r, col))}
			}
		}
	}
}
