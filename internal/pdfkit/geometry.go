package pdfkit

import "github.com/xxxsen/examforge/internal/model"

// Rect is a region in a page's visible-area coordinates: x grows right, y grows
// down from the top edge of the box.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CropToPage converts a normalized crop rectangle into the page's coordinate
// space. The identity crop (0,0,1,1) returns the page box itself.
func CropToPage(page Rect, crop model.CropRect) Rect {
	x0 := page.X0 + crop.X*page.Width()
	y0 := page.Y0 + crop.Y*page.Height()
	return Rect{
		X0: x0,
		Y0: y0,
		X1: x0 + crop.W*page.Width(),
		Y1: y0 + crop.H*page.Height(),
	}
}

// toUserSpace mirrors r inside box so that a top-down rectangle becomes the
// bottom-up rectangle PDF crop boxes are expressed in.
func toUserSpace(box, r Rect) Rect {
	return Rect{
		X0: r.X0,
		Y0: box.Y0 + box.Y1 - r.Y1,
		X1: r.X1,
		Y1: box.Y0 + box.Y1 - r.Y0,
	}
}
