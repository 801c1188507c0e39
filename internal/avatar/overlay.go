package avatar

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Logo badge geometry, anchored to the bottom-right corner of the card.
const (
	logoText    = "SwellDreams"
	logoPadding = 6
	logoMargin  = 12
)

// Overlay stamps the product logo badge onto the bottom-right corner of a
// normalized card PNG and re-encodes it. Only native exports receive the
// overlay; the clean avatar is captured before this step so re-imports can
// restore it.
func Overlay(basePNG []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(basePNG))
	if err != nil {
		return nil, fmt.Errorf("decoding base raster: %w", err)
	}

	dst := image.NewRGBA(src.Bounds())
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
	stampLogo(dst)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding overlaid raster: %w", err)
	}
	return buf.Bytes(), nil
}

// stampLogo draws a translucent dark badge with the product name.
func stampLogo(dst *image.RGBA) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, logoText).Ceil()
	textH := face.Metrics().Height.Ceil()

	badgeW := textW + 2*logoPadding
	badgeH := textH + 2*logoPadding

	bounds := dst.Bounds()
	badge := image.Rect(
		bounds.Max.X-logoMargin-badgeW,
		bounds.Max.Y-logoMargin-badgeH,
		bounds.Max.X-logoMargin,
		bounds.Max.Y-logoMargin,
	).Intersect(bounds)
	if badge.Empty() {
		// Raster smaller than the badge; skip the stamp.
		return
	}

	shade := color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xc0}
	xdraw.Draw(dst, badge, image.NewUniform(shade), image.Point{}, xdraw.Over)

	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(badge.Min.X + logoPadding),
			Y: fixed.I(badge.Min.Y + logoPadding + face.Metrics().Ascent.Ceil()),
		},
	}
	drawer.DrawString(logoText)
}
