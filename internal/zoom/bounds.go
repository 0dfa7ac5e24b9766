// Package zoom turns pan/pinch gesture samples into an animated scale and
// translation for a zoomable image.
package zoom

import "fyne.io/fyne/v2"

// Bounds returns the half-overflow of content drawn at scale beyond the
// element on each axis, i.e. how far the content can be panned before its
// edge reaches the element edge.
func Bounds(content, element fyne.Size, scale float32) (bx, by float32) {
	bx = max(content.Width*scale-element.Width, 0) / 2
	by = max(content.Height*scale-element.Height, 0) / 2
	return bx, by
}

// FitSize returns content scaled down or up so it fits inside element while
// keeping its aspect ratio. A zero-sized content yields a zero size.
func FitSize(content, element fyne.Size) fyne.Size {
	if content.Width <= 0 || content.Height <= 0 {
		return fyne.Size{}
	}
	f := min(element.Width/content.Width, element.Height/content.Height)
	return fyne.NewSize(content.Width*f, content.Height*f)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
