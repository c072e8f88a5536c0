// Package submit provides destinations for valid address submissions.
//
// Every sink implements addressform.Submitter:
//
//   - Log: writes the values to a structured logger
//   - Memory: keeps records in memory, for tests and previews
//   - Disk: one JSON file per submission in a directory
//   - S3: one JSON object per submission in a bucket
//
// Sanitizer strips HTML from input values. It runs as the form's Cleaner,
// before validation:
//
//	f := addressform.New(
//	    addressform.WithCleaner(submit.NewSanitizer()),
//	    addressform.WithSubmitter(submit.NewLog(logger)),
//	)
package submit
