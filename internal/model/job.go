package model

import "fmt"

// TemplateSpec references the background image every output is painted on.
type TemplateSpec struct {
	// Source is a local path, a file:// URL or an http(s) URL.
	Source string
}

// GridDimensions is the size of the voxel grid. Every axis is at least 1
// once it comes out of ExportJob.Dimensions.
type GridDimensions struct {
	X, Y, Z int
}

// Total returns the number of voxels in the grid.
func (d GridDimensions) Total() int {
	return d.X * d.Y * d.Z
}

// String returns "XxYxZ".
func (d GridDimensions) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// ExportJob is a snapshot of the whole configuration taken when an export
// starts. It is a plain value: copying it copies every face, so later edits to
// the configuration that produced it cannot leak into a running export.
//
// Example:
//
//	job := NewExportJob()
//	job.Template.Source = "template.png"
//	front := job.Face(FaceFront)
//	front.Enabled = true
//	front.HorizontalCount, front.VerticalCount = 2, 1
//	job.SetFace(front)
//	dims := job.Dimensions() // 2x1x1
type ExportJob struct {
	Template TemplateSpec

	// Faces holds one entry per face in FRONT..LEFT order.
	Faces [NumFaces]FaceSpec
}

// NewExportJob returns a job with every face present and disabled.
func NewExportJob() ExportJob {
	var job ExportJob
	for _, f := range AllFaces {
		job.Faces[f.slot()] = NewFaceSpec(f)
	}
	return job
}

// Face returns the configuration of one face. An invalid index yields a zero FaceSpec.
func (j *ExportJob) Face(index FaceIndex) FaceSpec {
	if !index.Valid() {
		return FaceSpec{}
	}
	return j.Faces[index.slot()]
}

// SetFace stores face under its own Index.
func (j *ExportJob) SetFace(face FaceSpec) {
	if !face.Index.Valid() {
		return
	}
	j.Faces[face.Index.slot()] = face
}

// EnabledFaces returns the enabled faces in FRONT..LEFT order.
func (j *ExportJob) EnabledFaces() []FaceSpec {
	var faces []FaceSpec
	for _, f := range j.Faces {
		if f.Enabled {
			faces = append(faces, f)
		}
	}
	return faces
}

// AxisSizes returns the raw grid size along each axis: the largest tile count
// of the enabled faces spanning that axis, or 0 when no enabled face spans it.
//
// A face contributes to Z through exactly one of its counts: RIGHT and LEFT
// through the horizontal count, TOP and BOTTOM through the vertical count.
func (j *ExportJob) AxisSizes() (x, y, z int) {
	for _, f := range j.Faces {
		if !f.Enabled {
			continue
		}
		if f.AffectsXHorizontally() {
			x = max(x, f.HorizontalCount)
		}
		if f.AffectsYVertically() {
			y = max(y, f.VerticalCount)
		}
		if f.AffectsZHorizontally() {
			z = max(z, f.HorizontalCount)
		} else if f.AffectsZVertically() {
			z = max(z, f.VerticalCount)
		}
	}
	return x, y, z
}

// Dimensions returns AxisSizes with every axis clamped to at least 1, so a job
// without enabled faces still visits exactly one voxel.
func (j *ExportJob) Dimensions() GridDimensions {
	x, y, z := j.AxisSizes()
	return GridDimensions{X: max(1, x), Y: max(1, y), Z: max(1, z)}
}
