// Package voxel maps voxel positions on the shell of the grid to the face
// tiles that cover them.
package voxel

import (
	"image"

	"github.com/handiism/waifu2ugc/internal/model"
)

// Pos is a voxel coordinate. X grows to the right, Y downwards and Z away
// from the front face.
type Pos struct {
	X, Y, Z int
}

// Rule is the geometry of one face: where on the grid it is visible and which
// tile of the face image covers a visible voxel.
type Rule struct {
	Visible   func(p Pos, d model.GridDimensions) bool
	Translate func(p Pos, d model.GridDimensions) image.Point
}

// rules is indexed by model.FaceIndex; slot 0 (FaceInvalid) is never visible.
var rules = [model.NumFaces + 1]Rule{
	model.FaceInvalid: {
		Visible:   func(Pos, model.GridDimensions) bool { return false },
		Translate: func(Pos, model.GridDimensions) image.Point { return image.Point{} },
	},
	model.FaceFront: {
		Visible:   func(p Pos, _ model.GridDimensions) bool { return p.Z == 0 },
		Translate: func(p Pos, _ model.GridDimensions) image.Point { return image.Pt(p.X, p.Y) },
	},
	model.FaceTop: {
		Visible:   func(p Pos, _ model.GridDimensions) bool { return p.Y == 0 },
		Translate: func(p Pos, d model.GridDimensions) image.Point { return image.Pt(p.X, d.Z-1-p.Z) },
	},
	model.FaceRight: {
		Visible:   func(p Pos, d model.GridDimensions) bool { return p.X == d.X-1 },
		Translate: func(p Pos, _ model.GridDimensions) image.Point { return image.Pt(p.Z, p.Y) },
	},
	model.FaceBack: {
		Visible:   func(p Pos, d model.GridDimensions) bool { return p.Z == d.Z-1 },
		Translate: func(p Pos, d model.GridDimensions) image.Point { return image.Pt(d.X-1-p.X, p.Y) },
	},
	model.FaceBottom: {
		Visible:   func(p Pos, d model.GridDimensions) bool { return p.Y == d.Y-1 },
		Translate: func(p Pos, d model.GridDimensions) image.Point { return image.Pt(d.X-1-p.X, d.Z-1-p.Z) },
	},
	model.FaceLeft: {
		Visible:   func(p Pos, _ model.GridDimensions) bool { return p.X == 0 },
		Translate: func(p Pos, d model.GridDimensions) image.Point { return image.Pt(d.Z-1-p.Z, p.Y) },
	},
}

// RuleFor returns the geometry rule of a face.
func RuleFor(face model.FaceIndex) Rule {
	if !face.Valid() {
		return rules[model.FaceInvalid]
	}
	return rules[face]
}

// Visible reports whether face lies on the grid boundary touching p.
func Visible(face model.FaceIndex, p Pos, d model.GridDimensions) bool {
	return RuleFor(face).Visible(p, d)
}

// Translate returns the tile coordinate (u, v) of face that covers p.
// The result is only meaningful when Visible is true.
func Translate(face model.FaceIndex, p Pos, d model.GridDimensions) image.Point {
	return RuleFor(face).Translate(p, d)
}
