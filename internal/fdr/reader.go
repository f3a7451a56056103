package fdr

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var (
	// ErrVersionMismatch is returned when a file was written with another
	// interface version.
	ErrVersionMismatch = errors.New("fdr: interface version mismatch")
	ErrChecksum        = errors.New("fdr: record checksum mismatch")
)

type Reader struct {
	r       io.Reader
	closers []io.Closer
	version uint64
	buf     []byte
}

// ReadVersion returns the interface version in the header of r without
// checking it.
func ReadVersion(r io.Reader, compressed bool) (uint64, error) {
	rd, err := newReader(r, compressed)
	if err != nil {
		return 0, err
	}
	defer rd.Close()
	return rd.version, nil
}

// NewReader reads the header from r and fails with ErrVersionMismatch when
// the file was written with another Version.
func NewReader(r io.Reader, compressed bool) (*Reader, error) {
	rd, err := newReader(r, compressed)
	if err != nil {
		return nil, err
	}
	if rd.version != Version {
		_ = rd.Close()
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, Version, rd.version)
	}
	return rd, nil
}

func newReader(r io.Reader, compressed bool) (*Reader, error) {
	rd := &Reader{r: bufio.NewReaderSize(r, 64*1024), buf: make([]byte, RecordSize+2)}
	if compressed {
		gz, err := gzip.NewReader(rd.r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		rd.r = gz
		rd.closers = append(rd.closers, gz)
	}
	var hdr [8]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		_ = rd.Close()
		return nil, fmt.Errorf("read fdr header: %w", err)
	}
	rd.version = binary.LittleEndian.Uint64(hdr[:])
	return rd, nil
}

// Open opens a recorder file; Close also closes the file.
func Open(path string, compressed bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(f, compressed)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	rd.closers = append(rd.closers, f)
	return rd, nil
}

func (r *Reader) Version() uint64 { return r.version }

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if errors.Is(err, io.EOF) {
			return rec, io.EOF
		}
		return rec, fmt.Errorf("read record: %w", err)
	}
	body := r.buf[:RecordSize]
	if got, want := binary.LittleEndian.Uint16(r.buf[RecordSize:]), crc16(body); got != want {
		return rec, fmt.Errorf("%w: stored %04x computed %04x", ErrChecksum, got, want)
	}
	if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}
