package processing

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.Set(x, y, color.RGBA{r, g, 128, 255})
		}
	}

	return img
}

func TestResizeForModel(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(640, 480)

	resized := p.ResizeForModel(img, 300, 300)

	if resized.Bounds().Dx() != 300 || resized.Bounds().Dy() != 300 {
		t.Errorf("Expected 300x300, got %dx%d", resized.Bounds().Dx(), resized.Bounds().Dy())
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(100, 80)

	tests := []struct {
		name   string
		format string
	}{
		{"jpeg", "jpg"},
		{"png", "png"},
		{"webp", "webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+tt.format)
			if err := p.SaveImage(img, path, tt.format, 90, false); err != nil {
				t.Fatalf("SaveImage failed: %v", err)
			}

			loaded, err := p.LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if loaded.Bounds().Dx() != 100 || loaded.Bounds().Dy() != 80 {
				t.Errorf("Expected 100x80, got %dx%d", loaded.Bounds().Dx(), loaded.Bounds().Dy())
			}
		})
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	p := NewProcessor()
	if _, err := p.LoadImage(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadImageFromURLRejectsBadScheme(t *testing.T) {
	p := NewProcessor()
	if _, err := p.LoadImageFromURL("ftp://example.com/image.jpg"); err == nil {
		t.Error("Expected error for unsupported URL scheme")
	}
}
