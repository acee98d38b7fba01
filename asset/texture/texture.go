package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset"
	"github.com/microsoft/morphcharts-sub000/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// A texture image and its metadata. Texel data is stored as linear float32
// values, one or four channels per texel depending on the format.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []float32
}

// Create a new RGBA texture from a Resource.
func New(res *asset.Resource) (*Texture, error) {
	img, err := decode(res)
	if err != nil {
		return nil, err
	}
	return FromImage(img, Rgba32F), nil
}

// Create a single channel SDF glyph atlas texture from a Resource. The
// luminance of each texel is interpreted as a normalized distance value.
func NewAtlas(res *asset.Resource) (*Texture, error) {
	img, err := decode(res)
	if err != nil {
		return nil, err
	}
	return FromImage(img, Luminance32F), nil
}

func decode(res *asset.Resource) (image.Image, error) {
	img, imgFmt, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture: image %s (%s) has no pixels", res.Path(), imgFmt)
	}
	return img, nil
}

// Convert an image to a texture with the requested format.
func FromImage(img image.Image, format Format) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Format: format,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
	channels := format.Channels()
	tex.Data = make([]float32, int(tex.Width*tex.Height)*channels)

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			if format == Luminance32F {
				tex.Data[offset] = float32(c.R) / 0xffff
			} else {
				tex.Data[offset+0] = float32(c.R) / 0xffff
				tex.Data[offset+1] = float32(c.G) / 0xffff
				tex.Data[offset+2] = float32(c.B) / 0xffff
				tex.Data[offset+3] = float32(c.A) / 0xffff
			}
			offset += channels
		}
	}

	return tex
}

// Fetch a single texel. Coordinates are clamped to the texture edges.
func (t *Texture) Texel(x, y int) types.Vec4 {
	x = clampInt(x, 0, int(t.Width)-1)
	y = clampInt(y, 0, int(t.Height)-1)
	if t.Format == Luminance32F {
		l := t.Data[y*int(t.Width)+x]
		return types.Vec4{l, l, l, 1}
	}
	offset := (y*int(t.Width) + x) * 4
	return types.Vec4{t.Data[offset], t.Data[offset+1], t.Data[offset+2], t.Data[offset+3]}
}

// Bilinearly sample the texture at normalized coordinates (u, v). The v axis
// points down the image rows.
func (t *Texture) Sample(u, v float32) types.Vec4 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return types.Vec4{}
	}
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := t.Texel(x0, y0)
	c10 := t.Texel(x0+1, y0)
	c01 := t.Texel(x0, y0+1)
	c11 := t.Texel(x0+1, y0+1)

	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
