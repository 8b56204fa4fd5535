package display

import (
	"context"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/AirOverlay/internal/config"
	"github.com/junsooki/AirOverlay/internal/decoder"
	"github.com/junsooki/AirOverlay/internal/overlay"
	"github.com/junsooki/AirOverlay/internal/relay"
)

// EbitenOverlay shows the latest frame in a transparent, undecorated,
// always-on-top Ebitengine window that is click-through unless the cursor
// is over the image.
type EbitenOverlay struct {
	ctx       context.Context
	loop      *overlay.Loop
	placement *overlay.Placement
	title     string
	opacity   float64

	texture    *ebiten.Image
	textureGen uint64
}

type ebitenSurface struct{}

func (ebitenSurface) SetMousePassthrough(enabled bool) {
	ebiten.SetWindowMousePassthrough(enabled)
}

// NewEbitenOverlay creates the overlay. The window stops at the next tick
// after ctx is done.
func NewEbitenOverlay(ctx context.Context, src overlay.FrameSource, dec decoder.Decoder, cfg *config.Config) *EbitenOverlay {
	return &EbitenOverlay{
		ctx: ctx,
		loop: overlay.New(src, dec, ebitenSurface{}, overlay.Options{
			Opacity:    cfg.Opacity,
			OnBadFrame: cfg.OnBadFrame,
		}),
		placement: overlay.NewPlacement(cfg.X, cfg.Y, cfg.Width, cfg.Height, cfg.NaturalSize),
		title:     cfg.Title,
		opacity:   cfg.Opacity,
	}
}

// Show displays f before the window loop starts.
func (d *EbitenOverlay) Show(f relay.Frame) error {
	return d.loop.Show(f)
}

// Run configures the window and starts the Ebitengine game loop. Must be
// called from the main goroutine.
func (d *EbitenOverlay) Run() error {
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ebiten.Monitor().Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowPosition(0, 0)
	ebiten.MaximizeWindow()

	return ebiten.RunGameWithOptions(d, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		InitUnfocused:     true,
	})
}

// --- ebiten.Game interface ---

func (d *EbitenOverlay) Update() error {
	select {
	case <-d.ctx.Done():
		return ebiten.Termination
	default:
	}
	return d.loop.Tick(d.inputWants())
}

func (d *EbitenOverlay) Draw(screen *ebiten.Image) {
	shown := d.loop.State().Displayed
	if shown == nil {
		return
	}

	if shown.Generation != d.textureGen {
		d.upload(shown.Image)
		d.textureGen = shown.Generation
	}

	size := shown.Image.Bounds().Size()
	rect := d.placement.Rect(size)
	scale, offsetX, offsetY := aspectFitTransform(float64(rect.Dx()), float64(rect.Dy()), float64(size.X), float64(size.Y))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(rect.Min.X)+offsetX, float64(rect.Min.Y)+offsetY)
	op.ColorScale.ScaleAlpha(float32(d.opacity))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(d.texture, op)
}

func (d *EbitenOverlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (d *EbitenOverlay) upload(img *image.RGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if d.texture != nil && d.texture.Bounds().Dx() == w && d.texture.Bounds().Dy() == h && img.Stride == 4*w {
		d.texture.WritePixels(img.Pix)
		return
	}
	if d.texture != nil {
		d.texture.Deallocate()
	}
	d.texture = ebiten.NewImageFromImage(img)
}

// --- Input ---

// inputWants reports whether the overlay wants pointer or keyboard input
// this tick. The pointer is wanted while hovering or dragging the image, the
// keyboard while focused and hovering.
func (d *EbitenOverlay) inputWants() overlay.InputWants {
	var size image.Point
	if shown := d.loop.State().Displayed; shown != nil {
		size = shown.Image.Bounds().Size()
	}

	cursor := image.Pt(ebiten.CursorPosition())
	pointer := d.placement.Pointer(cursor, size,
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft))

	keyboard := ebiten.IsFocused() && cursor.In(d.placement.Rect(size))
	if keyboard && inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		d.placement.Reset()
	}
	return overlay.InputWants{Pointer: pointer, Keyboard: keyboard}
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	if frameW == 0 || frameH == 0 {
		return 1, 0, 0
	}
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
