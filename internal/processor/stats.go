package processor

// Stats aggregates outcomes for a run. It is written by exactly one
// goroutine (the collector, or the caller when running sequentially), so it
// carries no lock; readers get a copy from Snapshot after Run returns.
type Stats struct {
	Total          int            `json:"total_files"`
	Processed      int            `json:"processed"`
	Compressed     int            `json:"compressed"`
	Skipped        int            `json:"skipped"`
	Failed         int            `json:"failed"`
	OriginalSize   int64          `json:"original_size"`
	CompressedSize int64          `json:"compressed_size"`
	SpaceSaved     int64          `json:"space_saved"`
	SkipCauses     map[string]int `json:"skip_causes,omitempty"`
}

// Record folds one terminal outcome and returns the matching progress delta.
// Byte totals only count compressed jobs.
func (s *Stats) Record(o Outcome) ProgressUpdate {
	u := ProgressUpdate{ProcessedDelta: 1}
	s.Processed++

	switch o.Status {
	case StatusCompressed:
		s.Compressed++
		s.OriginalSize += o.OriginalSize
		s.CompressedSize += o.NewSize
		saved := o.OriginalSize - o.NewSize
		s.SpaceSaved += saved
		u.CompressedDelta = 1
		u.BytesSavedDelta = saved
	case StatusSkipped:
		s.Skipped++
		if s.SkipCauses == nil {
			s.SkipCauses = make(map[string]int)
		}
		s.SkipCauses[causeLabel(o.Err)]++
		u.SkippedDelta = 1
	default:
		s.Failed++
		u.FailedDelta = 1
	}
	return u
}

// Snapshot returns a copy safe to keep after further Record calls.
func (s *Stats) Snapshot() Stats {
	cp := *s
	if s.SkipCauses != nil {
		cp.SkipCauses = make(map[string]int, len(s.SkipCauses))
		for k, v := range s.SkipCauses {
			cp.SkipCauses[k] = v
		}
	}
	return cp
}

// Consistent reports whether every processed job reached exactly one terminal state.
func (s Stats) Consistent() bool {
	return s.Processed == s.Compressed+s.Skipped+s.Failed && s.CompressedSize <= s.OriginalSize
}
