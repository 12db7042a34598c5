package export

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	ioutils "github.com/handiism/waifu2ugc/internal/io"
	"github.com/handiism/waifu2ugc/internal/model"
	"github.com/handiism/waifu2ugc/internal/voxel"
)

// Sources are the decoded inputs of the compositing phase.
type Sources struct {
	Template image.Image

	// Faces holds the preprocessed image of every enabled face.
	Faces map[model.FaceIndex]image.Image
}

// Update is a message from the compositing worker to its coordinator.
// An empty Status leaves the status unchanged; Total == 0 carries no progress.
type Update struct {
	Status string
	Done   int
	Total  int
}

// Summary describes what a compositing run did.
type Summary struct {
	Dimensions model.GridDimensions
	Visited    int
	Written    int
	Files      []string
}

// Compositor walks the voxel shell and writes one PNG per voxel that at least
// one face tile covers.
type Compositor struct {
	images *ioutils.ImageService
	log    *zap.Logger
}

// NewCompositor creates a Compositor. A nil logger disables logging.
func NewCompositor(images *ioutils.ImageService, log *zap.Logger) *Compositor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compositor{images: images, log: log}
}

// Run composites every voxel of job's grid into dir.
//
// Voxels are visited with x outermost and z innermost. ctx is checked before
// each loop level, so once it is canceled no further voxel is started; the
// voxel in progress is still written. Files written before cancellation are
// kept. On cancellation Run returns ctx.Err().
//
// report is called synchronously from Run's goroutine.
func (c *Compositor) Run(ctx context.Context, job *model.ExportJob, src Sources, dir string, report func(Update)) (Summary, error) {
	if report == nil {
		report = func(Update) {}
	}
	if src.Template == nil {
		return Summary{}, newJobError(ErrDecode, "The template image is missing.", nil)
	}

	report(Update{Status: "Worker started. Calculating..."})

	dims := job.Dimensions()
	total := dims.Total()
	sum := Summary{Dimensions: dims}

	c.log.Debug("compositing", zap.Stringer("grid", dims), zap.Int("voxels", total))
	report(Update{Status: "Starting...", Done: 0, Total: total})

	// Writes of a voxel that already started are not interrupted.
	writeCtx := context.WithoutCancel(ctx)

	for x := 0; x < dims.X; x++ {
		if ctx.Err() != nil {
			break
		}
		for y := 0; y < dims.Y; y++ {
			if ctx.Err() != nil {
				break
			}
			for z := 0; z < dims.Z; z++ {
				if ctx.Err() != nil {
					break
				}

				name, err := c.composeVoxel(writeCtx, job, src, dir, voxel.Pos{X: x, Y: y, Z: z}, dims, report)
				if err != nil {
					return sum, err
				}
				if name != "" {
					sum.Written++
					sum.Files = append(sum.Files, name)
				}

				sum.Visited++
				report(Update{Done: sum.Visited, Total: total})
			}
		}
	}

	if err := ctx.Err(); err != nil {
		report(Update{Status: "Canceled while exporting."})
		return sum, err
	}

	report(Update{Status: "Completed!", Done: total, Total: total})
	return sum, nil
}

// composeVoxel paints every hit of p onto a template copy and saves it.
// It returns the file name, or "" when no face covers p.
func (c *Compositor) composeVoxel(ctx context.Context, job *model.ExportJob, src Sources, dir string, p voxel.Pos, dims model.GridDimensions, report func(Update)) (string, error) {
	hits := voxel.Hits(job, p, dims)
	primary, ok := voxel.Primary(hits)
	if !ok {
		return "", nil
	}

	var out *image.NRGBA
	for _, h := range hits {
		report(Update{Status: fmt.Sprintf("Processing face '%s' x:%d, y:%d!", h.Face.Label, h.Tile.X, h.Tile.Y)})

		faceImage := src.Faces[h.Face.Index]
		if faceImage == nil {
			return "", newJobError(ErrDecode, fmt.Sprintf("The image of face '%s' is missing.", h.Face.Label), nil)
		}

		if out == nil {
			out = c.images.Clone(src.Template)
		}

		size := h.Face.TileSize()
		origin := image.Pt(size.X*h.Tile.X, size.Y*h.Tile.Y)
		c.images.CopyTile(out, h.Face.Rect.Min, faceImage, image.Rectangle{Min: origin, Max: origin.Add(size)})
	}

	label := primary.Face.Label
	if label == "" {
		label = model.DefaultLabel(primary.Face.Index)
	}
	name := voxel.FileName(primary, ioutils.SanitizeFileName(label))
	report(Update{Status: fmt.Sprintf("Saving %s...", name)})

	path := filepath.Join(dir, name)
	if err := c.images.SavePNG(ctx, path, out); err != nil {
		return "", newJobError(ErrOutput, fmt.Sprintf("Could not write '%s'.", path), err)
	}
	c.log.Debug("wrote output", zap.String("file", name), zap.Int("hits", len(hits)))

	return name, nil
}
