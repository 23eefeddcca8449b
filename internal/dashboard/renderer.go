// Package dashboard draws sensor readings for the e-paper panel and keeps the
// panel up to date.
package dashboard

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/bitmap"
	"github.com/toothrot/inkdash/internal/sensor"
)

const (
	rowHeight      = 50
	valueX         = 10
	trendX         = 10
	nameX          = 25
	captionOffset  = 36
	toolbarHeight  = 24
	timestampGap   = 3
	numButtons     = 4
	thresholdLevel = 0x80
)

// Toolbar labels: refresh, previous, next, settings.
var buttons = [numButtons]string{"⟳", "←", "→", "⚙"}

// Renderer lays out readings, the toolbar and a timestamp.
type Renderer struct {
	Width, Height int
	Faces         *Faces
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRenderer returns a Renderer sized for g, turned by 90 degrees when
// landscape is set.
func NewRenderer(g epd2in7.Geometry, landscape bool, faces *Faces) *Renderer {
	b := g.Bounds()
	if landscape {
		b = g.RotatedBounds()
	}
	return &Renderer{Width: b.Dx(), Height: b.Dy(), Faces: faces, Now: time.Now}
}

// Render draws readings top to bottom. Rows that would run into the toolbar
// are dropped. The result only holds the values 0 and 255.
func (r *Renderer) Render(readings []sensor.Reading) *image.Gray {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)

	bottom := float64(r.Height - toolbarHeight)
	for i, rd := range readings {
		y := float64(i * rowHeight)
		if y+rowHeight > bottom {
			break
		}
		r.measurement(dc, rd, y)
	}
	r.toolbar(dc)
	r.timestamp(dc)
	return bitmap.Threshold(dc.Image(), thresholdLevel)
}

func (r *Renderer) measurement(dc *gg.Context, rd sensor.Reading, y float64) {
	dc.SetFontFace(r.Faces.Measurement)
	dc.DrawStringAnchored(rd.FormatValue(), valueX, y, 0, 1)

	dc.SetFontFace(r.Faces.Description)
	dc.DrawStringAnchored(rd.TrendSymbol(), trendX, y+captionOffset, 0, 1)
	dc.DrawStringAnchored(rd.Name, nameX, y+captionOffset, 0, 1)

	hline(dc, y+rowHeight, float64(r.Width))
}

func (r *Renderer) toolbar(dc *gg.Context) {
	top := float64(r.Height - toolbarHeight)
	hline(dc, top, float64(r.Width))

	cell := float64(r.Width) / numButtons
	dc.SetFontFace(r.Faces.Toolbar)
	for i, label := range buttons {
		x := float64(i) * cell
		dc.DrawStringAnchored(label, x+cell/2, top+toolbarHeight/2, 0.5, 0.5)
		if i > 0 {
			dc.DrawLine(x+0.5, top, x+0.5, float64(r.Height))
			dc.Stroke()
		}
	}
}

func (r *Renderer) timestamp(dc *gg.Context) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	dc.SetFontFace(r.Faces.Description)
	dc.DrawStringAnchored(FormatTimestamp(now()), float64(r.Width)/2, float64(r.Height-toolbarHeight-timestampGap), 0.5, 0)
}

// hline strokes a 1px line covering pixel row y.
func hline(dc *gg.Context, y, width float64) {
	dc.DrawLine(0, y+0.5, width, y+0.5)
	dc.Stroke()
}

// FormatTimestamp formats t as day.month.year hour:minute.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d %d:%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}
