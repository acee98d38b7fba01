package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/microsoft/morphcharts-sub000/asset"
	"golang.org/x/image/bmp"
)

func TestRgbaTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 0, 255, 255})

	tex, err := New(mockImage(t, img))
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 2x1; got %dx%d", tex.Width, tex.Height)
	}
	if tex.Format != Rgba32F {
		t.Fatalf("expected tex format to be %s; got %s", Rgba32F, tex.Format)
	}
	expLen := 2 * 4
	if len(tex.Data) != expLen {
		t.Fatalf("expected tex data len to be %d; got %d", expLen, len(tex.Data))
	}

	texel := tex.Texel(1, 0)
	if texel[0] != 0 || texel[2] != 1 || texel[3] != 1 {
		t.Fatalf("expected texel (1, 0) to be blue; got %v", texel)
	}

	// Sampling the middle of the first texel should return it exactly
	sample := tex.Sample(0.25, 0.5)
	if sample[0] != 1 || sample[2] != 0 {
		t.Fatalf("expected sample to be red; got %v", sample)
	}

	// Sampling between texels should blend them
	sample = tex.Sample(0.5, 0.5)
	if sample[0] < 0.49 || sample[0] > 0.51 || sample[2] < 0.49 || sample[2] > 0.51 {
		t.Fatalf("expected blended sample; got %v", sample)
	}
}

func TestAtlasTexture(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := NewAtlas(asset.NewResourceFromStream("atlas.bmp", &buf))
	if err != nil {
		t.Fatal(err)
	}

	if tex.Format != Luminance32F {
		t.Fatalf("expected tex format to be %s; got %s", Luminance32F, tex.Format)
	}
	if len(tex.Data) != 1 || tex.Data[0] != 1 {
		t.Fatalf("expected a single texel with value 1; got %v", tex.Data)
	}
}

func TestStreamHttpTexture(t *testing.T) {
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/texture.png" {
			png.Encode(w, image.NewRGBA64(image.Rect(0, 0, 1, 1)))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	imgRes, err := asset.NewResource(server.URL+"/texture.png", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer imgRes.Close()

	tex, err := New(imgRes)
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 1 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 1x1; got %dx%d", tex.Width, tex.Height)
	}
}

func TestInvalidTexture(t *testing.T) {
	_, err := New(asset.NewResourceFromStream("broken.png", bytes.NewReader([]byte("not an image"))))
	if err == nil {
		t.Fatal("expected decoding a non-image stream to fail")
	}
}

func mockImage(t *testing.T, img image.Image) *asset.Resource {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return asset.NewResourceFromStream("test.png", &buf)
}
