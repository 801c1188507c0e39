package avatar

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder palette. The background is picked by name hash so each
// character keeps a stable color across exports.
var placeholderPalette = []color.RGBA{
	{R: 0x5b, G: 0x6e, B: 0xe8, A: 0xff}, // indigo
	{R: 0x2f, G: 0x9e, B: 0x7a, A: 0xff}, // teal
	{R: 0xc2, G: 0x5b, B: 0x74, A: 0xff}, // rose
	{R: 0xb0, G: 0x7d, B: 0x3c, A: 0xff}, // amber
	{R: 0x6d, G: 0x5b, B: 0xa8, A: 0xff}, // violet
	{R: 0x3c, G: 0x7d, B: 0xb0, A: 0xff}, // steel
}

// Placeholder renders the procedural fallback avatar: the character's
// initials on a solid name-keyed background. It always succeeds; an
// unusable name degrades to a "?" monogram.
func Placeholder(name string) []byte {
	bg := placeholderPalette[nameHash(name)%uint32(len(placeholderPalette))]
	monogram := initials(name)

	// Render small, then scale up. basicfont only has one size; the
	// nearest-neighbor upscale keeps the monogram crisp and chunky.
	tileW, tileH := CardWidth/5, CardHeight/5
	tile := image.NewRGBA(image.Rect(0, 0, tileW, tileH))
	xdraw.Draw(tile, tile.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	face := basicfont.Face7x13
	textW := font.MeasureString(face, monogram).Ceil()
	drawer := font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((tileW - textW) / 2),
			Y: fixed.I(tileH/2 + face.Metrics().Ascent.Ceil()/2),
		},
	}
	drawer.DrawString(monogram)

	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), tile, tile.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, dst)
	return buf.Bytes()
}

// initials returns up to two uppercased word-initial letters of name.
func initials(name string) string {
	var letters []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				letters = append(letters, unicode.ToUpper(r))
			}
			break
		}
		if len(letters) == 2 {
			break
		}
	}
	if len(letters) == 0 {
		return "?"
	}
	return string(letters)
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}
