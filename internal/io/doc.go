// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Writing output files without leaving partial files behind
//   - Filename sanitization for cross-platform compatibility
//   - Directory checks and creation
//   - Resolving relative paths against a base directory
//   - Image decoding, preprocessing, tile copying and PNG encoding
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/file.png", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
//	// Resolve a relative reference
//	abs := ioutils.ResolvePath("art/front.png", "/projects/cube")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Side: L/R") // Returns "Side_ L_R"
//
// # Image Processing
//
// The ImageService handles face sources and outputs:
//
//	svc := ioutils.NewImageService()
//
//	// Decode any supported format
//	img, _ := svc.Decode(data)
//
//	// Resize, fit or crop according to the face configuration
//	img, _ = svc.Preprocess(ctx, img, face)
//
//	// Write a composited output
//	err := svc.SavePNG(ctx, "/out/waifu2ugc-111-Front-1,1.png", out)
package ioutils
