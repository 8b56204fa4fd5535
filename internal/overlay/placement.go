package overlay

import "image"

// Placement tracks where the image sits on the overlay and lets the user
// drag it around.
type Placement struct {
	anchor  image.Point
	pos     image.Point
	size    image.Point
	natural bool

	dragging   bool
	dragOffset image.Point
}

// NewPlacement anchors the image at (x, y). With natural set the image is
// drawn at its own size; otherwise at w×h.
func NewPlacement(x, y, w, h int, natural bool) *Placement {
	return &Placement{
		anchor:  image.Pt(x, y),
		pos:     image.Pt(x, y),
		size:    image.Pt(w, h),
		natural: natural,
	}
}

// Rect returns the on-screen rectangle for an image of the given size.
func (p *Placement) Rect(imgSize image.Point) image.Rectangle {
	size := p.size
	if p.natural {
		size = imgSize
	}
	return image.Rectangle{Min: p.pos, Max: p.pos.Add(size)}
}

// Dragging reports whether a drag is in progress.
func (p *Placement) Dragging() bool {
	return p.dragging
}

// Pointer feeds the cursor position and left-button state for one tick and
// reports whether the overlay wants the pointer.
func (p *Placement) Pointer(cursor image.Point, imgSize image.Point, pressed, justPressed bool) bool {
	hover := cursor.In(p.Rect(imgSize))
	switch {
	case justPressed && hover:
		p.dragging = true
		p.dragOffset = cursor.Sub(p.pos)
	case p.dragging && !pressed:
		p.dragging = false
	}
	if p.dragging {
		p.pos = cursor.Sub(p.dragOffset)
	}
	return hover || p.dragging
}

// Reset moves the image back to its anchor.
func (p *Placement) Reset() {
	p.pos = p.anchor
	p.dragging = false
}
