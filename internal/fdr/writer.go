package fdr

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// ErrLocked is returned when another writer holds the recorder directory.
var ErrLocked = errors.New("fdr: directory locked by another writer")

const filePrefix = "fbw-"

type Options struct {
	Dir               string
	MaxSamplesPerFile int
	MaxFiles          int
	Compress          bool
}

// Writer appends records to rotating files in Options.Dir. A new file is
// started every MaxSamplesPerFile records and only the newest MaxFiles
// files are kept.
type Writer struct {
	opts  Options
	lock  *os.File
	stamp string
	seq   int

	f       *os.File
	bw      *bufio.Writer
	gz      *gzip.Writer
	out     io.Writer
	path    string
	samples int

	buf    bytes.Buffer
	closed bool
}

func NewWriter(opts Options) (*Writer, error) {
	if opts.Dir == "" {
		return nil, errors.New("fdr: dir is required")
	}
	if opts.MaxSamplesPerFile < 1 || opts.MaxFiles < 1 {
		return nil, fmt.Errorf("fdr: max_samples_per_file and max_files must be > 0")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fdr dir: %w", err)
	}
	lock, err := lockDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	return &Writer{
		opts:  opts,
		lock:  lock,
		stamp: time.Now().UTC().Format("20060102-150405"),
	}, nil
}

func lockPath(dir string) string { return filepath.Join(dir, ".lock") }

func (w *Writer) ext() string {
	if w.opts.Compress {
		return ".fdr.gz"
	}
	return ".fdr"
}

// Path returns the file currently written, empty before the first record.
func (w *Writer) Path() string { return w.path }

func (w *Writer) Write(r *Record) error {
	if w.closed {
		return errors.New("fdr writer is closed")
	}
	if r == nil {
		return errors.New("record is nil")
	}
	if w.f == nil || w.samples >= w.opts.MaxSamplesPerFile {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	w.buf.Reset()
	if err := binary.Write(&w.buf, binary.LittleEndian, r); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	var crc [2]byte
	binary.LittleEndian.PutUint16(crc[:], crc16(w.buf.Bytes()))
	w.buf.Write(crc[:])
	if _, err := w.out.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.samples++
	return nil
}

func (w *Writer) rotate() error {
	if err := w.closeFile(); err != nil {
		return err
	}
	for {
		w.seq++
		path := filepath.Join(w.opts.Dir, fmt.Sprintf("%s%s-%04d%s", filePrefix, w.stamp, w.seq, w.ext()))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create fdr file: %w", err)
		}
		w.f, w.path = f, path
		break
	}
	w.bw = bufio.NewWriterSize(w.f, 64*1024)
	w.out = w.bw
	if w.opts.Compress {
		w.gz = gzip.NewWriter(w.bw)
		w.out = w.gz
	}
	w.samples = 0

	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], Version)
	if _, err := w.out.Write(hdr[:]); err != nil {
		return fmt.Errorf("write fdr header: %w", err)
	}
	return w.cleanup()
}

// cleanup removes the oldest recorder files beyond MaxFiles.
func (w *Writer) cleanup() error {
	files, err := Files(w.opts.Dir)
	if err != nil {
		return err
	}
	for len(files) > w.opts.MaxFiles {
		if err := os.Remove(files[0]); err != nil {
			return fmt.Errorf("remove old fdr file: %w", err)
		}
		files = files[1:]
	}
	return nil
}

// Files lists the recorder files in dir, oldest first.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.Contains(name, ".fdr") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func (w *Writer) Flush() error {
	if w.closed || w.f == nil {
		return nil
	}
	if w.gz != nil {
		if err := w.gz.Flush(); err != nil {
			return err
		}
	}
	return w.bw.Flush()
}

func (w *Writer) closeFile() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			_ = f.Close()
			return err
		}
		w.gz = nil
	}
	if err := w.bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.closeFile()
	if w.lock != nil {
		_ = w.lock.Close()
	}
	return err
}
