package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/handiism/waifu2ugc/internal/model"
)

// Rect is a rectangle in pixels.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rectangle converts r to an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// FaceSettings configures one face of the cube.
type FaceSettings struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Label overrides the display label. Empty means the capitalized face name.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Rect is the tile size and where the tile is painted on the template.
	Rect            Rect `json:"rect" yaml:"rect"`
	HorizontalCount int  `json:"horizontal_count" yaml:"horizontal_count"`
	VerticalCount   int  `json:"vertical_count" yaml:"vertical_count"`

	// Image is a local path, a file:// URL or an http(s) URL.
	Image string `json:"image" yaml:"image"`

	Resize              bool   `json:"resize" yaml:"resize"`
	PreserveAspectRatio bool   `json:"preserve_aspect_ratio" yaml:"preserve_aspect_ratio"`
	AspectRatioAction   string `json:"aspect_ratio_action" yaml:"aspect_ratio_action"` // fit, crop
	FitRect             Rect   `json:"fit_rect" yaml:"fit_rect"`
	CropRect            Rect   `json:"crop_rect" yaml:"crop_rect"`
}

// Settings holds all configuration options.
type Settings struct {
	// Job settings
	Template  string                  `json:"template" yaml:"template"`
	Faces     map[string]FaceSettings `json:"faces" yaml:"faces"` // keyed by face name
	OutputDir string                  `json:"output_dir" yaml:"output_dir"`

	// BaseDir is where relative image references and OutputDir are resolved.
	// Empty means the user's home directory.
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`

	// Loading settings
	MaxConcurrentLoads int     `json:"max_concurrent_loads" yaml:"max_concurrent_loads"`
	DownloadTimeout    float64 `json:"download_timeout" yaml:"download_timeout"` // seconds
	UserAgent          string  `json:"user_agent" yaml:"user_agent"`

	// Logging settings
	LogLevel string `json:"log_level" yaml:"log_level"` // debug, info, warn, error
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Faces:              make(map[string]FaceSettings),
		OutputDir:          ".",
		MaxConcurrentLoads: 4,
		DownloadTimeout:    60,
		UserAgent:          "waifu2ugc",
		LogLevel:           "info",
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads settings from a JSON or YAML file, picked by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings.Faces == nil {
		settings.Faces = make(map[string]FaceSettings)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, picked by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for errors that would make an export fail.
// All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error

	if strings.TrimSpace(s.Template) == "" {
		errs = append(errs, errors.New("template: no image set"))
	}
	if s.MaxConcurrentLoads < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent_loads: must not be negative, got %d", s.MaxConcurrentLoads))
	}
	if s.DownloadTimeout < 0 {
		errs = append(errs, fmt.Errorf("download_timeout: must not be negative, got %g", s.DownloadTimeout))
	}

	for name, f := range s.Faces {
		if _, err := model.ParseFaceIndex(name); err != nil {
			errs = append(errs, fmt.Errorf("faces: %w", err))
			continue
		}
		if err := f.validate(); err != nil {
			errs = append(errs, fmt.Errorf("faces.%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func (f FaceSettings) validate() error {
	if f.HorizontalCount < 0 || f.VerticalCount < 0 {
		return fmt.Errorf("tile counts must not be negative, got %dx%d", f.HorizontalCount, f.VerticalCount)
	}
	action, err := model.ParseAspectAction(f.AspectRatioAction)
	if err != nil {
		return err
	}
	if !f.Enabled {
		return nil
	}

	if f.Rect.Empty() {
		return fmt.Errorf("rect %dx%d is empty", f.Rect.Width, f.Rect.Height)
	}
	if strings.TrimSpace(f.Image) == "" {
		return errors.New("no image set")
	}
	if f.Resize && f.PreserveAspectRatio {
		switch action {
		case model.AspectFit:
			if f.FitRect.Empty() {
				return errors.New("fit_rect is empty")
			}
		case model.AspectCrop:
			if f.CropRect.Empty() {
				return errors.New("crop_rect is empty")
			}
		}
	}
	return nil
}

// Job validates the settings and converts them into an ExportJob. Faces
// missing from the settings are disabled.
func (s *Settings) Job() (model.ExportJob, error) {
	if err := s.Validate(); err != nil {
		return model.ExportJob{}, err
	}

	job := model.NewExportJob()
	job.Template.Source = s.Template

	for name, f := range s.Faces {
		index, _ := model.ParseFaceIndex(name)
		action, _ := model.ParseAspectAction(f.AspectRatioAction)

		face := model.NewFaceSpec(index)
		if f.Label != "" {
			face.Label = f.Label
		}
		face.Enabled = f.Enabled
		face.Rect = f.Rect.Rectangle()
		face.HorizontalCount = f.HorizontalCount
		face.VerticalCount = f.VerticalCount
		face.Source = f.Image
		face.Resize = f.Resize
		face.PreserveAspectRatio = f.PreserveAspectRatio
		face.AspectAction = action
		face.FitRect = f.FitRect.Rectangle()
		face.CropRect = f.CropRect.Rectangle()

		job.SetFace(face)
	}

	return job, nil
}
