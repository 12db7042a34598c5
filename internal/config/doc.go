// Package config provides configuration management for waifu2ugc.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Validation and conversion to model.ExportJob
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/cube.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Example
//
//	template: template.png
//	output_dir: out
//	faces:
//	  front:
//	    enabled: true
//	    rect: {x: 10, y: 10, width: 64, height: 64}
//	    horizontal_count: 2
//	    vertical_count: 2
//	    image: https://example.com/front.png
//	    resize: true
//	    preserve_aspect_ratio: true
//	    aspect_ratio_action: crop
//	    crop_rect: {x: 0, y: 0, width: 512, height: 512}
//
// # Converting to a Job
//
//	job, err := settings.Job()
//	if err != nil {
//	    // validation failed, err lists every problem
//	}
package config
