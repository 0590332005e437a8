package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Layout holds the grid geometry of a contact sheet.
type Layout struct {
	Cols   int
	Rows   int
	Gap    int
	Margin int
}

// FrameCount returns how many thumbnails the grid holds.
func (l Layout) FrameCount() int { return l.Cols * l.Rows }

// Validate rejects geometry the composer cannot lay out.
func (l Layout) Validate() error {
	if l.Cols <= 0 || l.Rows <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", l.Cols, l.Rows)
	}
	if l.Gap < 0 || l.Margin < 0 {
		return fmt.Errorf("gap and margin must be non-negative, got gap=%d margin=%d", l.Gap, l.Margin)
	}
	return nil
}

// ComposeSheet lays the frames out row-major on a black canvas sized
// cols*w+(cols-1)*gap+2*margin by rows*h+(rows-1)*gap+2*margin. Fewer frames
// than grid cells leaves the trailing cells as background; mixed frame sizes
// are an error.
func ComposeSheet(frames []image.Image, layout Layout) (*image.RGBA, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no thumbnail frames to compose")
	}
	if len(frames) > layout.FrameCount() {
		return nil, fmt.Errorf("%d frames exceed the %dx%d grid", len(frames), layout.Cols, layout.Rows)
	}

	thumbW := frames[0].Bounds().Dx()
	thumbH := frames[0].Bounds().Dy()
	for i, frame := range frames {
		if frame.Bounds().Dx() != thumbW || frame.Bounds().Dy() != thumbH {
			return nil, fmt.Errorf("frame %d is %dx%d, expected uniform %dx%d",
				i, frame.Bounds().Dx(), frame.Bounds().Dy(), thumbW, thumbH)
		}
	}

	sheetW := layout.Cols*thumbW + (layout.Cols-1)*layout.Gap + 2*layout.Margin
	sheetH := layout.Rows*thumbH + (layout.Rows-1)*layout.Gap + 2*layout.Margin

	sheet := image.NewRGBA(image.Rect(0, 0, sheetW, sheetH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for i, frame := range frames {
		col := i % layout.Cols
		row := i / layout.Cols
		x := layout.Margin + col*(thumbW+layout.Gap)
		y := layout.Margin + row*(thumbH+layout.Gap)
		cell := image.Rect(x, y, x+thumbW, y+thumbH)
		draw.Draw(sheet, cell, frame, frame.Bounds().Min, draw.Src)
	}

	return sheet, nil
}
