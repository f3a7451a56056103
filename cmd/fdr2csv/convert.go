package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"fbwsim/internal/fdr"
)

type convertOptions struct {
	In            string
	Out           string
	Delimiter     string
	NoCompression bool
}

type versionError struct {
	got uint64
}

func (e *versionError) Error() string {
	return fmt.Sprintf("file version %d, converter version %d", e.got, fdr.Version)
}

func (e *versionError) Unwrap() error { return fdr.ErrVersionMismatch }

func fileVersion(path string, compressed bool) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return fdr.ReadVersion(f, compressed)
}

// openChecked checks the version before any record is decoded.
func openChecked(path string, compressed bool) (*fdr.Reader, error) {
	v, err := fileVersion(path, compressed)
	if err != nil {
		return nil, err
	}
	if v != fdr.Version {
		return nil, &versionError{got: v}
	}
	return fdr.Open(path, compressed)
}

func delimiterRune(d string) (rune, error) {
	if d == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if r == utf8.RuneError || size != len(d) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", d)
	}
	return r, nil
}

func convertFile(opts convertOptions) error {
	comma, err := delimiterRune(opts.Delimiter)
	if err != nil {
		return err
	}
	r, err := openChecked(opts.In, !opts.NoCompression)
	if err != nil {
		return err
	}
	defer r.Close()

	var w io.Writer = os.Stdout
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	n, err := convert(r, w, comma)
	if err != nil {
		return fmt.Errorf("after %d records: %w", n, err)
	}
	return nil
}

// convert writes a header row and one row per record. It stops at the
// first damaged record; rows before it are kept.
func convert(r *fdr.Reader, w io.Writer, comma rune) (int, error) {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(fdr.Columns()); err != nil {
		return 0, err
	}
	n := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cw.Flush()
			return n, err
		}
		if err := cw.Write(rec.Values()); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}
