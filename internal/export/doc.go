// Package export turns an ExportJob into the PNG files of a voxel shell.
//
// An export runs in three phases:
//   - Preloading: the template and every enabled face image are fetched
//     concurrently from local paths or http(s) URLs
//   - Preprocessing: images are decoded and face images resized
//   - Exporting: a Compositor walks the grid and writes one PNG per voxel
//     covered by at least one face tile
//
// # Usage
//
//	exporter := export.NewExporter(settings, logger.Named("export"), func(ev export.Event) {
//	    fmt.Println(ev.Kind, ev.Message)
//	})
//
//	if err := exporter.Start(ctx, job, "/path/to/out"); err != nil {
//	    // ErrReentrancy or ErrConfiguration
//	}
//
//	res, err := exporter.Wait(ctx)
//	// res.Outcome is OutcomeFinished, OutcomeAborted or OutcomeFailed
//
// # Progress
//
// Progress is a percentage split into bands: preloading covers 0-10,
// preprocessing 10-20 and exporting 20-100. Changes of 0.005 or less are not
// published.
//
// # Cancellation
//
// Cancel stops the job at the next check point. Files written before that
// are kept, and a voxel whose output is being written is finished. A canceled
// job ends with OutcomeAborted and an EventAborted; it is not an error.
package export
