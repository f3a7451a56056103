package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fbwsim/internal/fdr"
)

// replayFile prints one line per recorded tick, paced by the recorded time.
func replayFile(ctx context.Context, w io.Writer, path string, speed float64) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	r, err := fdr.Open(path, strings.HasSuffix(path, ".gz"))
	if err != nil {
		return err
	}
	defer r.Close()

	recs, err := r.ReadAll()
	if err != nil {
		return err
	}
	return fdr.Play(recs, speed, false, nil, func(rec *fdr.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, replayLine(rec))
		return err
	})
}

func replayLine(r *fdr.Record) string {
	return fmt.Sprintf("t=%.2f tick=%d alt=%.0f cas=%.1f pitch=%.2f roll=%.2f hdg=%.1f masters=%v law=%d ap=%d/%d athr=%d",
		r.TimeS, r.Tick, r.AltitudeFt, r.CasKn, r.PitchDeg, r.RollDeg, r.HeadingDeg,
		r.Masters, r.PitchLaw, r.APLateral, r.APVertical, r.ATHRStatus)
}
