package main

import (
	"fmt"
	"io"
	"sort"

	"fbwsim/internal/fdr"
)

type fileSummary struct {
	Records      int
	Segments     int
	Clamped      int
	Warnings     int
	MaxDurationS float64
	// MasterChanges counts master handovers per axis.
	MasterChanges [5]int
	LawCounts     map[uint8]int
}

func summarize(records []fdr.Record) fileSummary {
	s := fileSummary{LawCounts: map[uint8]int{}}
	if len(records) == 0 {
		return s
	}
	s.Segments = 1
	origin := records[0].TimeS - records[0].DtS
	for i := range records {
		r := &records[i]
		s.Records++
		if i > 0 {
			prev := &records[i-1]
			if r.TimeS < prev.TimeS {
				s.Segments++
				origin = r.TimeS - r.DtS
			}
			for a := range r.Masters {
				if r.Masters[a] != prev.Masters[a] {
					s.MasterChanges[a]++
				}
			}
		}
		if d := r.TimeS - origin; d > s.MaxDurationS {
			s.MaxDurationS = d
		}
		if r.Flags&fdr.FlagClamped != 0 {
			s.Clamped++
		}
		if r.Flags&fdr.FlagPerformanceWarning != 0 {
			s.Warnings++
		}
		s.LawCounts[r.PitchLaw]++
	}
	return s
}

func printSummary(w io.Writer, path string, compressed bool) error {
	r, err := openChecked(path, compressed)
	if err != nil {
		return err
	}
	defer r.Close()
	recs, err := r.ReadAll()
	if err != nil {
		return err
	}

	s := summarize(recs)
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "version: %d\n", r.Version())
	fmt.Fprintf(w, "records: %d\n", s.Records)
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "max_duration_s: %.2f\n", s.MaxDurationS)
	fmt.Fprintf(w, "clamped: %d\n", s.Clamped)
	fmt.Fprintf(w, "performance_warning: %d\n", s.Warnings)
	fmt.Fprintf(w, "master_changes: %v\n", s.MasterChanges)

	keys := make([]int, 0, len(s.LawCounts))
	for k := range s.LawCounts {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	fmt.Fprintf(w, "pitch_law_counts:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "  %d: %d\n", k, s.LawCounts[uint8(k)])
	}
	return nil
}
