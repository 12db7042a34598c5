package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	"image/png"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/handiism/waifu2ugc/internal/model"
)

// supportedExtensions lists the file extensions of every registered decoder.
var supportedExtensions = []string{"bmp", "gif", "jpeg", "jpg", "png", "tif", "tiff", "webp"}

// ImageService provides the image operations of an export.
//
// ImageService is used to:
//   - Decode face and template sources (PNG, JPEG, GIF, BMP, TIFF, WebP)
//   - Preprocess a face source according to its FaceSpec
//   - Copy face tiles onto a template clone
//   - Encode composited outputs as PNG
//
// Example usage:
//
//	svc := NewImageService()
//
//	img, _ := svc.Decode(data)
//	img, _ = svc.Preprocess(ctx, img, face)
//	out := svc.Clone(template)
//	svc.CopyTile(out, face.Rect.Min, img, image.Rect(0, 0, 64, 64))
//	_ = svc.SavePNG(ctx, "/out/tile.png", out)
type ImageService struct {
	encoder png.Encoder
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{
		encoder: png.Encoder{CompressionLevel: png.DefaultCompression},
	}
}

// SupportedImageTypes returns a glob list of decodable files, e.g. "*.bmp *.gif ...".
func SupportedImageTypes() string {
	exts := append([]string(nil), supportedExtensions...)
	sort.Strings(exts)
	return "*." + strings.Join(exts, " *.")
}

// Decode decodes image data in any registered format.
func (s *ImageService) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Preprocess prepares a face source before it is cut into tiles.
//
// With Resize disabled the image is returned unchanged. Otherwise the result
// is always exactly face.TargetSize():
//   - PreserveAspectRatio off: the source is stretched to the target size.
//   - AspectFit: the unscaled source is drawn at FitRect.Min on a transparent
//     canvas of FitRect's size, then the canvas is stretched.
//   - AspectCrop: CropRect is cut out of the source (areas outside the source
//     stay transparent), then stretched.
//
// Scaling uses Catmull-Rom. The context is checked before any work starts.
//
// Example:
//
//	face.Resize = true
//	face.PreserveAspectRatio = true
//	face.AspectAction = model.AspectCrop
//	face.CropRect = image.Rect(100, 0, 600, 500)
//	out, err := svc.Preprocess(ctx, src, face)
func (s *ImageService) Preprocess(ctx context.Context, img image.Image, face model.FaceSpec) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !face.Resize {
		return img, nil
	}

	size := face.TargetSize()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("face %s: target size %dx%d is empty", face.Name, size.X, size.Y)
	}

	if !face.PreserveAspectRatio {
		return s.Scale(img, size), nil
	}

	switch face.AspectAction {
	case model.AspectFit:
		if face.FitRect.Empty() {
			return nil, fmt.Errorf("face %s: fit rectangle is empty", face.Name)
		}
		frame := image.NewNRGBA(image.Rect(0, 0, face.FitRect.Dx(), face.FitRect.Dy()))
		draw.Copy(frame, face.FitRect.Min, img, img.Bounds(), draw.Src, nil)
		return s.Scale(frame, size), nil

	case model.AspectCrop:
		if face.CropRect.Empty() {
			return nil, fmt.Errorf("face %s: crop rectangle is empty", face.Name)
		}
		cropped := image.NewNRGBA(image.Rect(0, 0, face.CropRect.Dx(), face.CropRect.Dy()))
		draw.Copy(cropped, image.Point{}, img, face.CropRect.Add(img.Bounds().Min), draw.Src, nil)
		return s.Scale(cropped, size), nil
	}

	return nil, fmt.Errorf("face %s: unknown aspect ratio action %v", face.Name, face.AspectAction)
}

// Scale stretches img to size, ignoring its aspect ratio.
func (s *ImageService) Scale(img image.Image, size image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))

	// Use Catmull-Rom for high-quality scaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	return dst
}

// Clone returns a writable copy of img with the same bounds.
func (s *ImageService) Clone(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// CopyTile copies the src rectangle of tile to dst with its top-left corner at
// dp (relative to dst's origin). Pixels are replaced, not blended.
func (s *ImageService) CopyTile(dst draw.Image, dp image.Point, tile image.Image, src image.Rectangle) {
	draw.Copy(dst, dp.Add(dst.Bounds().Min), tile, src.Add(tile.Bounds().Min), draw.Src, nil)
}

// EncodePNG encodes img as PNG.
func (s *ImageService) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.encoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG encodes img and writes it to path, replacing an existing file.
func (s *ImageService) SavePNG(ctx context.Context, path string, img image.Image) error {
	data, err := s.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFile(ctx, path, data)
}
