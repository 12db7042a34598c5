package model

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FaceIndex identifies one of the six faces of the voxel volume.
//
// The numeric values are part of the output file naming scheme
// (see voxel.FileName) and must not be reordered: FRONT is 1 and LEFT is 6.
// The declaration order is also the tie-break order used when several faces
// hit the same voxel.
type FaceIndex int

const (
	FaceInvalid FaceIndex = iota
	FaceFront
	FaceTop
	FaceRight
	FaceBack
	FaceBottom
	FaceLeft
)

// NumFaces is the number of valid faces.
const NumFaces = 6

// AllFaces lists the valid faces in tie-break order.
var AllFaces = [NumFaces]FaceIndex{FaceFront, FaceTop, FaceRight, FaceBack, FaceBottom, FaceLeft}

var faceNames = [...]string{"invalid", "front", "top", "right", "back", "bottom", "left"}

// String returns the lower-case identifying name of the face ("front", "top", ...).
func (f FaceIndex) String() string {
	if !f.Valid() {
		return faceNames[FaceInvalid]
	}
	return faceNames[f]
}

// Valid reports whether f is one of the six real faces.
func (f FaceIndex) Valid() bool {
	return f >= FaceFront && f <= FaceLeft
}

// slot returns the position of f inside a [NumFaces] array.
func (f FaceIndex) slot() int {
	return int(f) - 1
}

// ParseFaceIndex converts a face name to its FaceIndex. Matching is case-insensitive.
//
// Example:
//
//	idx, err := ParseFaceIndex("Bottom") // FaceBottom, nil
func ParseFaceIndex(name string) (FaceIndex, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range AllFaces {
		if faceNames[f] == name {
			return f, nil
		}
	}
	return FaceInvalid, fmt.Errorf("unknown face %q", name)
}

// DefaultLabel returns the display label for a face, e.g. "Front".
func DefaultLabel(f FaceIndex) string {
	return cases.Title(language.English).String(f.String())
}

// AspectAction selects how a resized source keeps its aspect ratio.
type AspectAction int

const (
	// AspectFit places the unscaled source on a transparent canvas the size
	// of the fit rectangle before stretching it to the target size.
	AspectFit AspectAction = iota

	// AspectCrop cuts the crop rectangle out of the source before stretching it.
	AspectCrop
)

// String returns "fit" or "crop".
func (a AspectAction) String() string {
	switch a {
	case AspectFit:
		return "fit"
	case AspectCrop:
		return "crop"
	}
	return fmt.Sprintf("AspectAction(%d)", int(a))
}

// ParseAspectAction converts "fit" or "crop" to an AspectAction.
// An empty string is treated as "fit".
func ParseAspectAction(s string) (AspectAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fit":
		return AspectFit, nil
	case "crop":
		return AspectCrop, nil
	}
	return AspectFit, fmt.Errorf("unknown aspect ratio action %q", s)
}

// FaceSpec is the tiling configuration of one face.
//
// A face image is cut into HorizontalCount x VerticalCount tiles of
// Rect.Dx() x Rect.Dy() pixels each. Every tile ends up on one output image,
// painted at Rect.Min of the template.
//
// Example:
//
//	front := NewFaceSpec(FaceFront)
//	front.Enabled = true
//	front.Rect = image.Rect(10, 10, 74, 74) // 64x64 tile painted at (10,10)
//	front.HorizontalCount = 2
//	front.VerticalCount = 1
//	front.Source = "art/front.png"
type FaceSpec struct {
	// Index identifies the face and fixes its geometric role.
	Index FaceIndex

	// Name is the identifying name, e.g. "front".
	Name string

	// Label is the display label used in status messages and output file names.
	Label string

	// Enabled faces take part in sizing and compositing; disabled faces are ignored.
	Enabled bool

	// Rect is the tile size and the destination of the tile on the template.
	Rect image.Rectangle

	// HorizontalCount and VerticalCount are the number of tiles on the face image.
	HorizontalCount int
	VerticalCount   int

	// Source references the face image: a local path, a file:// URL or an http(s) URL.
	Source string

	// Resize enables preprocessing of the source before it is cut into tiles.
	Resize bool

	// PreserveAspectRatio selects the two stage fit/crop policy instead of a plain stretch.
	PreserveAspectRatio bool

	// AspectAction picks between FitRect and CropRect when PreserveAspectRatio is set.
	AspectAction AspectAction

	// FitRect is the canvas the unscaled source is placed on (AspectFit).
	FitRect image.Rectangle

	// CropRect is the region cut out of the source (AspectCrop).
	CropRect image.Rectangle
}

// NewFaceSpec returns a disabled face with its name and default label filled in.
func NewFaceSpec(index FaceIndex) FaceSpec {
	return FaceSpec{
		Index: index,
		Name:  index.String(),
		Label: DefaultLabel(index),
	}
}

// TileSize returns the pixel size of one tile.
func (f FaceSpec) TileSize() image.Point {
	return f.Rect.Size()
}

// TargetSize is the size a resized source is stretched to: one tile per count.
func (f FaceSpec) TargetSize() image.Point {
	return image.Pt(f.Rect.Dx()*f.HorizontalCount, f.Rect.Dy()*f.VerticalCount)
}

// InBounds reports whether the tile coordinate (u, v) exists on this face.
func (f FaceSpec) InBounds(u, v int) bool {
	return u >= 0 && v >= 0 && u < f.HorizontalCount && v < f.VerticalCount
}

// AffectsXHorizontally reports whether the face's horizontal count spans the X axis.
func (f FaceSpec) AffectsXHorizontally() bool {
	return f.Index == FaceFront || f.Index == FaceTop || f.Index == FaceBack || f.Index == FaceBottom
}

// AffectsYVertically reports whether the face's vertical count spans the Y axis.
func (f FaceSpec) AffectsYVertically() bool {
	return f.Index == FaceFront || f.Index == FaceRight || f.Index == FaceBack || f.Index == FaceLeft
}

// AffectsZHorizontally reports whether the face's horizontal count spans the Z axis.
func (f FaceSpec) AffectsZHorizontally() bool {
	return f.Index == FaceRight || f.Index == FaceLeft
}

// AffectsZVertically reports whether the face's vertical count spans the Z axis.
func (f FaceSpec) AffectsZVertically() bool {
	return f.Index == FaceTop || f.Index == FaceBottom
}
