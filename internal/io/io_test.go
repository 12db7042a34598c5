package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/waifu2ugc/internal/model"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func resizeFace(h, v int) model.FaceSpec {
	f := model.NewFaceSpec(model.FaceFront)
	f.Enabled = true
	f.Rect = image.Rect(0, 0, 8, 4)
	f.HorizontalCount = h
	f.VerticalCount = v
	f.Resize = true
	return f
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Front", "Front"},
		{"Side: L/R", "Side_ L_R"},
		{"a<b>c", "a_b_c"},
		{"pipe|star*", "pipe_star_"},
		{"Top...", "Top"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing   ", "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	base := t.TempDir()

	if got := ResolvePath("art/front.png", base); got != filepath.Join(base, "art", "front.png") {
		t.Errorf("ResolvePath(relative) = %q", got)
	}

	abs := filepath.Join(base, "x", "..", "y.png")
	if got := ResolvePath(abs, "/elsewhere"); got != filepath.Join(base, "y.png") {
		t.Errorf("ResolvePath(absolute) = %q", got)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		if got := ResolvePath("front.png", ""); got != filepath.Join(home, "front.png") {
			t.Errorf("ResolvePath(no base) = %q, want under %q", got, home)
		}
	}
}

func TestDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !DirectoryExists(dir) {
		t.Error("DirectoryExists(dir) = false")
	}
	if DirectoryExists(file) {
		t.Error("DirectoryExists(file) = true")
	}
	if DirectoryExists(filepath.Join(dir, "missing")) {
		t.Error("DirectoryExists(missing) = true")
	}
}

func TestWriteFile_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	if err := WriteFile(context.Background(), path, []byte("one")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(context.Background(), path, []byte("two")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestWriteFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "out.png")
	if err := WriteFile(ctx, path, []byte("x")); err == nil {
		t.Fatal("WriteFile with canceled context should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not exist")
	}
}

func TestSupportedImageTypes(t *testing.T) {
	got := SupportedImageTypes()
	for _, ext := range []string{"*.png", "*.jpg", "*.bmp", "*.webp", "*.tiff"} {
		if !strings.Contains(got, ext) {
			t.Errorf("SupportedImageTypes() = %q, missing %s", got, ext)
		}
	}
}

func TestDecode(t *testing.T) {
	svc := NewImageService()

	img, err := svc.Decode(encode(t, solid(3, 2, color.NRGBA{R: 255, A: 255})))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Size() != image.Pt(3, 2) {
		t.Errorf("size = %v, want (3,2)", img.Bounds().Size())
	}

	if _, err := svc.Decode([]byte("not an image")); err == nil {
		t.Error("Decode(garbage) should fail")
	}
	if _, err := svc.Decode(nil); err == nil {
		t.Error("Decode(nil) should fail")
	}
}

func TestPreprocess_Passthrough(t *testing.T) {
	svc := NewImageService()
	src := solid(5, 5, color.NRGBA{G: 255, A: 255})

	face := resizeFace(2, 2)
	face.Resize = false

	got, err := svc.Preprocess(context.Background(), src, face)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got != image.Image(src) {
		t.Error("Preprocess without resize should return the source unchanged")
	}
}

func TestPreprocess_Stretch(t *testing.T) {
	svc := NewImageService()
	src := solid(10, 30, color.NRGBA{B: 255, A: 255})

	got, err := svc.Preprocess(context.Background(), src, resizeFace(3, 2))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if size := got.Bounds().Size(); size != image.Pt(24, 8) {
		t.Fatalf("size = %v, want (24,8)", size)
	}
	if c := color.NRGBAModel.Convert(got.At(12, 4)).(color.NRGBA); c.B < 250 || c.A < 250 || c.R > 5 {
		t.Errorf("center pixel = %v, want opaque blue", c)
	}
}

func TestPreprocess_Fit(t *testing.T) {
	svc := NewImageService()
	src := solid(4, 4, color.NRGBA{R: 255, A: 255})

	face := resizeFace(1, 1)
	face.Rect = image.Rect(0, 0, 8, 8)
	face.PreserveAspectRatio = true
	face.AspectAction = model.AspectFit
	face.FitRect = image.Rect(4, 0, 12, 8) // 8x8 canvas, source drawn at (4,0)

	got, err := svc.Preprocess(context.Background(), src, face)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if size := got.Bounds().Size(); size != image.Pt(8, 8) {
		t.Fatalf("size = %v, want (8,8)", size)
	}
	if c := color.NRGBAModel.Convert(got.At(0, 0)).(color.NRGBA); c.A != 0 {
		t.Errorf("pixel (0,0) = %v, want transparent", c)
	}
	if c := color.NRGBAModel.Convert(got.At(5, 1)).(color.NRGBA); c.R != 255 || c.A != 255 {
		t.Errorf("pixel (5,1) = %v, want opaque red", c)
	}
	if c := color.NRGBAModel.Convert(got.At(6, 6)).(color.NRGBA); c.A != 0 {
		t.Errorf("pixel (6,6) = %v, want transparent", c)
	}
}

func TestPreprocess_Crop(t *testing.T) {
	svc := NewImageService()
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 4 {
				c = color.NRGBA{G: 255, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}

	face := resizeFace(1, 1)
	face.Rect = image.Rect(0, 0, 4, 4)
	face.PreserveAspectRatio = true
	face.AspectAction = model.AspectCrop
	face.CropRect = image.Rect(4, 0, 8, 4)

	got, err := svc.Preprocess(context.Background(), src, face)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if size := got.Bounds().Size(); size != image.Pt(4, 4) {
		t.Fatalf("size = %v, want (4,4)", size)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if c := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA); c.G != 255 || c.R != 0 {
				t.Fatalf("pixel (%d,%d) = %v, want green", x, y, c)
			}
		}
	}
}

func TestPreprocess_Errors(t *testing.T) {
	svc := NewImageService()
	src := solid(4, 4, color.NRGBA{A: 255})

	tests := []struct {
		name string
		face func() model.FaceSpec
	}{
		{"zero counts", func() model.FaceSpec { return resizeFace(0, 1) }},
		{"empty fit rect", func() model.FaceSpec {
			f := resizeFace(1, 1)
			f.PreserveAspectRatio = true
			f.AspectAction = model.AspectFit
			return f
		}},
		{"empty crop rect", func() model.FaceSpec {
			f := resizeFace(1, 1)
			f.PreserveAspectRatio = true
			f.AspectAction = model.AspectCrop
			return f
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Preprocess(context.Background(), src, tt.face()); err == nil {
				t.Error("Preprocess should fail")
			}
		})
	}
}

func TestCopyTile_ReplacesPixels(t *testing.T) {
	svc := NewImageService()
	template := solid(6, 6, color.NRGBA{R: 255, A: 255})
	tiles := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	tiles.SetNRGBA(2, 0, color.NRGBA{G: 255, A: 128})
	tiles.SetNRGBA(3, 1, color.NRGBA{B: 255, A: 255})

	out := svc.Clone(template)
	svc.CopyTile(out, image.Pt(1, 1), tiles, image.Rect(2, 0, 4, 2))

	if c := out.NRGBAAt(1, 1); c != (color.NRGBA{G: 255, A: 128}) {
		t.Errorf("pixel (1,1) = %v, want unblended half-transparent green", c)
	}
	if c := out.NRGBAAt(2, 2); c != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("pixel (2,2) = %v, want blue", c)
	}
	if c := out.NRGBAAt(2, 1); c != (color.NRGBA{}) {
		t.Errorf("pixel (2,1) = %v, want transparent copied from tile", c)
	}
	if c := out.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v, want untouched red", c)
	}
	if c := template.NRGBAAt(1, 1); c != (color.NRGBA{R: 255, A: 255}) {
		t.Error("Clone should not share pixels with the template")
	}
}

func TestSavePNG_Deterministic(t *testing.T) {
	svc := NewImageService()
	dir := t.TempDir()
	img := solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	if err := svc.SavePNG(context.Background(), a, img); err != nil {
		t.Fatal(err)
	}
	if err := svc.SavePNG(context.Background(), b, img); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("encoding the same image twice produced different files")
	}
}
