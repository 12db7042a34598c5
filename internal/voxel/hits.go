package voxel

import (
	"fmt"
	"image"

	"github.com/handiism/waifu2ugc/internal/model"
)

// FilePrefix starts every output file name.
const FilePrefix = "waifu2ugc"

// Hit is one face tile covering a voxel.
type Hit struct {
	Face model.FaceSpec
	Tile image.Point
}

// Hits returns every enabled face that is visible at p and has a tile for it,
// in FRONT..LEFT order. A face that is visible but whose translated tile lies
// outside its counts is skipped.
func Hits(job *model.ExportJob, p Pos, d model.GridDimensions) []Hit {
	var hits []Hit
	for _, face := range job.Faces {
		if !face.Enabled {
			continue
		}
		rule := RuleFor(face.Index)
		if !rule.Visible(p, d) {
			continue
		}
		tile := rule.Translate(p, d)
		if !face.InBounds(tile.X, tile.Y) {
			continue
		}
		hits = append(hits, Hit{Face: face, Tile: tile})
	}
	return hits
}

// Primary returns the hit that names the output file: the one whose face comes
// first in FRONT..LEFT order, whatever order hits is in.
func Primary(hits []Hit) (Hit, bool) {
	if len(hits) == 0 {
		return Hit{}, false
	}
	primary := hits[0]
	for _, h := range hits[1:] {
		if h.Face.Index < primary.Face.Index {
			primary = h
		}
	}
	return primary, true
}

// FileName returns the output name for a voxel whose primary hit is h:
//
//	waifu2ugc-<ordinal><u+1><v+1>-<label>-<u+1>,<v+1>.png
func FileName(h Hit, label string) string {
	u, v := h.Tile.X+1, h.Tile.Y+1
	return fmt.Sprintf("%s-%d%d%d-%s-%d,%d.png", FilePrefix, int(h.Face.Index), u, v, label, u, v)
}
