package certgen

import (
	"fmt"
	"image"
	"image/color"
)

// Layout defaults match the stock certificate template.
const (
	DefaultFontSize  = 80
	DefaultBoxWidth  = 500
	DefaultBoxHeight = 100
	DefaultOffsetX   = 180
	DefaultOffsetY   = 100
	DefaultColor     = "#000000"
)

// Layout positions the name on the template.
// The text box's top-left corner sits at the template center shifted right
// by OffsetX and up by OffsetY; the name is centered inside the box.
type Layout struct {
	FontSize  float64 // points at 72 DPI, i.e. template pixels
	BoxWidth  int
	BoxHeight int
	OffsetX   int
	OffsetY   int
	Color     string // "#RRGGBB"
	StrictFit bool   // fail instead of overflowing the box
}

// DefaultLayout returns the layout for the stock template.
func DefaultLayout() Layout {
	return Layout{
		FontSize:  DefaultFontSize,
		BoxWidth:  DefaultBoxWidth,
		BoxHeight: DefaultBoxHeight,
		OffsetX:   DefaultOffsetX,
		OffsetY:   DefaultOffsetY,
		Color:     DefaultColor,
	}
}

// Validate checks that the layout can be rendered.
func (l Layout) Validate() error {
	if l.FontSize <= 0 {
		return fmt.Errorf("%w: %.1f (must be positive)", ErrInvalidFontSize, l.FontSize)
	}
	if l.BoxWidth <= 0 || l.BoxHeight <= 0 {
		return fmt.Errorf("%w: %dx%d (width and height must be positive)", ErrInvalidTextBox, l.BoxWidth, l.BoxHeight)
	}
	if l.Color != "" {
		if _, err := ParseHexColor(l.Color); err != nil {
			return err
		}
	}
	return nil
}

// TextBox returns the box the name is centered in for a template of the given bounds.
func (l Layout) TextBox(bounds image.Rectangle) image.Rectangle {
	x := bounds.Min.X + bounds.Dx()/2 + l.OffsetX
	y := bounds.Min.Y + bounds.Dy()/2 - l.OffsetY
	return image.Rect(x, y, x+l.BoxWidth, y+l.BoxHeight)
}

// textColor returns the configured color, black when unset.
func (l Layout) textColor() color.NRGBA {
	if l.Color == "" {
		return color.NRGBA{A: 255}
	}
	c, err := ParseHexColor(l.Color)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}
