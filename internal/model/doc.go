// Package model defines the core data structures used throughout
// waifu2ugc.
//
// # Faces
//
// FaceIndex names one of the six faces of the voxel volume. Its integer value
// appears in output file names and its declaration order (FRONT, TOP, RIGHT,
// BACK, BOTTOM, LEFT) breaks ties when several faces hit one voxel.
//
// FaceSpec holds the tiling configuration of one face:
//
//	front := model.NewFaceSpec(model.FaceFront)
//	front.Enabled = true
//	front.Rect = image.Rect(0, 0, 64, 64)
//	front.HorizontalCount, front.VerticalCount = 4, 4
//
// # Jobs
//
// ExportJob is the immutable snapshot an export runs against. It derives the
// voxel grid size from the enabled faces:
//
//	job := model.NewExportJob()
//	job.SetFace(front)
//	dims := job.Dimensions() // 4x4x1
package model
