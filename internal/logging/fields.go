package logging

// Structured logging keys.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldSlot       = "slot"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldDryRun = "dry_run"
	FieldJobs   = "jobs"
	FieldWatch  = "watch"

	// Parsing fields.
	FieldParser   = "parser"
	FieldParsers  = "parsers"
	FieldLanguage = "language"
	FieldRegions  = "regions"
	FieldRegionID = "region_id"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesWritten    = "files_written"
	FieldFilesUnchanged  = "files_unchanged"
	FieldFilesErrored    = "files_errored"
	FieldPoolSize        = "pool_size"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
