package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/waifu2ugc/internal/config"
	"github.com/handiism/waifu2ugc/internal/http"
	ioutils "github.com/handiism/waifu2ugc/internal/io"
	"github.com/handiism/waifu2ugc/internal/model"
	"github.com/handiism/waifu2ugc/internal/source"
)

const templateKey = "template"

// resource is one image the preloading phase has to fetch.
type resource struct {
	key     string
	ref     string
	face    model.FaceSpec
	enabled bool
}

type loaded struct {
	key  string
	data []byte
}

// Exporter coordinates export jobs: it acquires the template and face
// images, preprocesses them, and hands them to a Compositor running on its own
// goroutine.
//
// At most one job runs at a time. Start returns as soon as the job is
// underway; progress, status and completion are published through the event
// callback and can be polled with Snapshot or awaited with Wait.
//
// The callback is invoked from the goroutine calling Start (started, and
// errors rejected by Start) and from the job's coordinating goroutine
// (everything else), never concurrently for one job. It must not call Start.
type Exporter struct {
	loader     *source.Loader
	images     *ioutils.ImageService
	compositor *Compositor
	log        *zap.Logger
	baseDir    string
	maxLoads   int

	onEvent func(Event)

	busy     atomic.Bool
	canceled atomic.Bool

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// NewExporter creates an Exporter from settings. A nil logger disables logging.
func NewExporter(settings *config.Settings, log *zap.Logger, onEvent func(Event)) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := time.Duration(settings.DownloadTimeout * float64(time.Second))
	client := http.NewClient(timeout, settings.UserAgent)
	images := ioutils.NewImageService()

	return &Exporter{
		loader:     source.NewLoader(client, settings.BaseDir),
		images:     images,
		compositor: NewCompositor(images, log.Named("compositor")),
		log:        log,
		baseDir:    settings.BaseDir,
		maxLoads:   max(1, settings.MaxConcurrentLoads),
		onEvent:    onEvent,
	}
}

// Start begins exporting job into the local directory destination.
//
// It fails with ErrReentrancy while another job is running, and with
// ErrConfiguration when destination is not a local path or does not exist.
// Every failure is also published as an EventError.
func (e *Exporter) Start(ctx context.Context, job model.ExportJob, destination string) error {
	if !e.busy.CompareAndSwap(false, true) {
		err := newJobError(ErrReentrancy, "waifu2ugc is already generating the files, please wait.", nil)
		e.reportError(err)
		return err
	}

	dir, err := e.resolveDestination(destination)
	if err != nil {
		e.busy.Store(false)
		e.reportError(err)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.canceled.Store(false)
	e.mu.Lock()
	e.cancel = cancel
	e.done = done
	e.result = Result{}
	e.state = State{Phase: PhasePreloading}
	e.mu.Unlock()

	e.setStatus("Preparing images...")
	e.emit(Event{Kind: EventStarted, Phase: PhasePreloading})

	e.log.Info("export started",
		zap.String("destination", dir),
		zap.Int("faces", len(job.EnabledFaces())))

	go e.run(ctx, cancel, job, dir, done)
	return nil
}

// Cancel asks the running job to stop. It is safe to call at any time and
// more than once; without a running job it does nothing.
func (e *Exporter) Cancel() {
	e.canceled.Store(true)

	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Busy reports whether a job is running.
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Canceled reports whether Cancel was called since the last Start.
func (e *Exporter) Canceled() bool {
	return e.canceled.Load()
}

// Snapshot returns the current phase, progress, status and error message.
func (e *Exporter) Snapshot() State {
	e.mu.Lock()
	s := e.state
	e.mu.Unlock()
	s.Busy = e.busy.Load()
	return s
}

// Wait blocks until the last started job ends and returns its Result.
// Without any started job it returns a zero Result immediately.
func (e *Exporter) Wait(ctx context.Context) (Result, error) {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done == nil {
		return Result{}, nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, nil
}

func (e *Exporter) resolveDestination(destination string) (string, error) {
	dir, ok := source.LocalPath(destination, e.baseDir)
	if !ok {
		return "", newJobError(ErrConfiguration, "The destination must be a local path.", nil)
	}
	if destination == "" || !ioutils.DirectoryExists(dir) {
		return "", newJobError(ErrConfiguration, "Invalid output destination.", nil)
	}
	return dir, nil
}

func (e *Exporter) run(ctx context.Context, cancel context.CancelFunc, job model.ExportJob, dir string, done chan struct{}) {
	defer cancel()

	sum, err := e.pipeline(ctx, &job, dir)

	res := Result{
		Dimensions: sum.Dimensions,
		Visited:    sum.Visited,
		Written:    sum.Written,
		Files:      sum.Files,
	}

	e.mu.Lock()
	res.Message = e.state.Status
	e.mu.Unlock()

	var jobErr *JobError
	switch {
	case err == nil:
		res.Outcome = OutcomeFinished
	case ctx.Err() != nil && !errors.As(err, &jobErr):
		res.Outcome = OutcomeAborted
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Message = err.Error()
	}

	e.finish(res, done)
}

// finish resets the progress state, clears busy, publishes the terminal event
// and releases Wait.
func (e *Exporter) finish(res Result, done chan struct{}) {
	e.setStatus("")
	e.setProgress(0)

	e.mu.Lock()
	e.state.Phase = PhaseIdle
	e.result = res
	e.cancel = nil
	e.mu.Unlock()

	e.busy.Store(false)

	switch res.Outcome {
	case OutcomeFinished:
		e.log.Info("export finished",
			zap.Stringer("grid", res.Dimensions),
			zap.Int("voxels", res.Visited),
			zap.Int("files", res.Written))
		e.emit(Event{Kind: EventFinished, Phase: PhaseIdle, Message: res.Message})
	case OutcomeAborted:
		e.log.Info("export aborted", zap.String("status", res.Message), zap.Int("files", res.Written))
		e.emit(Event{Kind: EventAborted, Phase: PhaseIdle, Message: res.Message})
	default:
		e.log.Error("export failed", zap.Error(res.Err))
		e.reportError(res.Err)
	}

	close(done)
}

func (e *Exporter) pipeline(ctx context.Context, job *model.ExportJob, dir string) (Summary, error) {
	raw, err := e.preload(ctx, job)
	if err != nil {
		return Summary{}, err
	}

	src, err := e.preprocess(ctx, job, raw)
	if err != nil {
		return Summary{}, err
	}

	return e.export(ctx, job, src, dir)
}

func resources(job *model.ExportJob) []resource {
	list := []resource{{key: templateKey, ref: job.Template.Source, enabled: true}}
	for _, f := range job.Faces {
		list = append(list, resource{key: f.Name, ref: f.Source, face: f, enabled: f.Enabled})
	}
	return list
}

// preload fetches every required resource concurrently. Disabled faces count
// as ready without being fetched. The first failure cancels the other loads.
func (e *Exporter) preload(ctx context.Context, job *model.ExportJob) (map[string][]byte, error) {
	e.setPhase(PhasePreloading)
	e.setStatus("Preloading images...")
	e.setProgress(preloadStart)

	list := resources(job)
	total := len(list)
	ready := 0
	raw := make(map[string][]byte, total)

	reportReady := func() {
		e.setStatus(fmt.Sprintf("%d/%d images loaded...", ready, total))
		e.setProgress(preloadStart + float64(ready)*preloadTotal/float64(total))
	}

	var pending []resource
	for _, r := range list {
		if r.enabled {
			pending = append(pending, r)
		} else {
			ready++
		}
	}
	reportReady()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxLoads)

	results := make(chan loaded, len(pending))
	waitErr := make(chan error, 1)

	go func() {
		for _, r := range pending {
			g.Go(func() error {
				data, err := e.loader.Load(gctx, r.ref)
				if err != nil {
					if gctx.Err() != nil && ctx.Err() != nil {
						return err
					}
					e.log.Warn("image load failed", zap.String("resource", r.key), zap.String("ref", r.ref), zap.Error(err))
					return newJobError(ErrAcquisition, fmt.Sprintf("Error loading image from:\r\n%s", r.ref), err)
				}
				results <- loaded{key: r.key, data: data}
				return nil
			})
		}
		waitErr <- g.Wait()
		close(results)
	}()

	for l := range results {
		raw[l.key] = l.data
		ready++
		if ctx.Err() == nil {
			e.log.Debug("image loaded", zap.String("resource", l.key), zap.Int("bytes", len(l.data)))
			reportReady()
		}
	}

	err := <-waitErr
	if ctx.Err() != nil {
		e.setStatus("Canceled while preloading images.")
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	e.setProgress(preloadStart + preloadTotal)
	return raw, nil
}

// preprocess decodes every loaded resource and applies the face preprocessing.
func (e *Exporter) preprocess(ctx context.Context, job *model.ExportJob, raw map[string][]byte) (Sources, error) {
	e.setPhase(PhasePreprocessing)
	e.setStatus("Copying state...")
	e.setStatus("Processing images...")
	e.setProgress(processStart)

	src := Sources{Faces: make(map[model.FaceIndex]image.Image, model.NumFaces)}

	var order []resource
	for _, r := range resources(job) {
		if r.enabled {
			order = append(order, r)
		}
	}

	for i, r := range order {
		if ctx.Err() != nil {
			e.setStatus("Canceled while processing images.")
			return Sources{}, ctx.Err()
		}

		img, err := e.images.Decode(raw[r.key])
		if err != nil {
			return Sources{}, newJobError(ErrDecode, fmt.Sprintf("An image could not be loaded from:\r\n'%s'", r.ref), err)
		}

		if r.key == templateKey {
			src.Template = img
		} else {
			img, err = e.images.Preprocess(ctx, img, r.face)
			if err != nil {
				if ctx.Err() != nil {
					e.setStatus("Canceled while processing images.")
					return Sources{}, ctx.Err()
				}
				return Sources{}, newJobError(ErrConfiguration, fmt.Sprintf("The image of face '%s' could not be resized: %v", r.face.Label, err), err)
			}
			src.Faces[r.face.Index] = img
		}

		e.setStatus(fmt.Sprintf("%d/%d images processed...", i+1, len(order)))
		e.setProgress(processStart + float64(i+1)*processTotal/float64(len(order)))
	}

	e.setProgress(processStart + processTotal)
	return src, nil
}

// export runs the Compositor on its own goroutine. The worker never touches
// the Exporter's state; it posts Updates that this goroutine applies.
func (e *Exporter) export(ctx context.Context, job *model.ExportJob, src Sources, dir string) (Summary, error) {
	e.setPhase(PhaseExporting)
	e.setStatus("Starting...")

	updates := make(chan Update, 64)

	var (
		sum Summary
		err error
	)
	go func() {
		defer close(updates)
		sum, err = e.compositor.Run(ctx, job, src, dir, func(u Update) {
			updates <- u
		})
	}()

	for u := range updates {
		if u.Status != "" {
			e.setStatus(u.Status)
		}
		if u.Total > 0 {
			e.setProgress(exportStart + float64(u.Done)*exportTotal/float64(u.Total))
		}
	}

	return sum, err
}

func (e *Exporter) setPhase(p Phase) {
	e.mu.Lock()
	e.state.Phase = p
	e.mu.Unlock()
	e.log.Debug("phase", zap.Stringer("phase", p))
}

func (e *Exporter) setStatus(status string) {
	e.mu.Lock()
	if e.state.Status == status {
		e.mu.Unlock()
		return
	}
	e.state.Status = status
	phase, progress := e.state.Phase, e.state.Progress
	e.mu.Unlock()

	e.emit(Event{Kind: EventStatus, Phase: phase, Progress: progress, Message: status})
}

// setProgress publishes only changes larger than progressChange.
func (e *Exporter) setProgress(progress float64) {
	e.mu.Lock()
	if math.Abs(e.state.Progress-progress) <= progressChange {
		e.mu.Unlock()
		return
	}
	e.state.Progress = progress
	phase := e.state.Phase
	e.mu.Unlock()

	e.emit(Event{Kind: EventProgress, Phase: phase, Progress: progress})
}

func (e *Exporter) reportError(err error) {
	e.mu.Lock()
	e.state.ErrorMessage = err.Error()
	phase := e.state.Phase
	e.mu.Unlock()

	e.emit(Event{Kind: EventError, Phase: phase, Message: err.Error(), Err: err})
}

func (e *Exporter) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}
