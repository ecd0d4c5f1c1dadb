package generate

// FileOutcome wraps FileResult with the job it belongs to.
type FileOutcome struct {
	Job Job

	// Result contains the pipeline result for this file.
	// May be nil if the file encountered an error during processing.
	Result *FileResult

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of staged files found.
	FilesDiscovered int

	// FilesWritten is the number of output files written, including created ones.
	FilesWritten int

	// FilesCreated is the number of output files that did not exist before.
	FilesCreated int

	// FilesUnchanged is the number of output files that already held the merged content.
	FilesUnchanged int

	// FilesPending is the number of output files a dry run would change.
	FilesPending int

	// FilesSkipped is the number of files skipped (e.g., due to concurrent modification).
	FilesSkipped int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int

	// BackupsCreated is the number of backups written.
	BackupsCreated int

	// RegionsPreserved is the number of regions carried over from earlier output.
	RegionsPreserved int

	// RegionsFilled is the number of regions refreshed by inverse parsers.
	RegionsFilled int
}

// Add sums other into s.
func (s *Stats) Add(other Stats) {
	s.FilesDiscovered += other.FilesDiscovered
	s.FilesWritten += other.FilesWritten
	s.FilesCreated += other.FilesCreated
	s.FilesUnchanged += other.FilesUnchanged
	s.FilesPending += other.FilesPending
	s.FilesSkipped += other.FilesSkipped
	s.FilesErrored += other.FilesErrored
	s.BackupsCreated += other.BackupsCreated
	s.RegionsPreserved += other.RegionsPreserved
	s.RegionsFilled += other.RegionsFilled
}

// Result is the overall runner result.
type Result struct {
	// Slot is the output slot the run wrote into.
	Slot string

	// Files contains the outcome for each processed file, ordered by RelPath.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// HasPending reports whether a dry run found output that would change.
func (r *Result) HasPending() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesPending > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	fr := outcome.Result
	if fr == nil {
		return
	}

	switch {
	case fr.Skipped:
		r.Stats.FilesSkipped++
	case fr.Unchanged:
		r.Stats.FilesUnchanged++
	case fr.Pending:
		r.Stats.FilesPending++
	case fr.Written:
		r.Stats.FilesWritten++
		if fr.Created {
			r.Stats.FilesCreated++
		}
	}

	if fr.BackupCreated {
		r.Stats.BackupsCreated++
	}
	r.Stats.RegionsPreserved += fr.Preserved()
	r.Stats.RegionsFilled += fr.Filled()
}
