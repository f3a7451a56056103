package fdr

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSleeper struct {
	slept []time.Duration
}

func (fs *fakeSleeper) Sleep(d time.Duration) {
	fs.slept = append(fs.slept, d)
}

func sample(tick uint64) Record {
	r := Record{
		Tick:       tick,
		TimeS:      float64(tick) * 0.05,
		DtS:        0.05,
		Flags:      FlagAP1 | FlagFD1,
		AltitudeFt: 10000 + float64(tick),
		CasKn:      250,
		Masters:    [5]uint8{1, 1, 1, 8, 6},
	}
	r.Health[0] = 2
	r.LeftSpoilerDeg[4] = 12.5
	r.N1Pct = [2]float64{61.2, 61.4}
	return r
}

func TestCRC16CheckValue(t *testing.T) {
	require.Equal(t, uint16(0x31C3), crc16([]byte("123456789")))
	require.Equal(t, uint16(0), crc16(nil))
}

func TestColumnsMatchValues(t *testing.T) {
	r := sample(3)
	cols := Columns()
	vals := r.Values()
	require.Len(t, vals, len(cols))
	require.Equal(t, "Tick", cols[0])
	require.Equal(t, "3", vals[0])
	require.Contains(t, cols, "Health_9")
	require.Contains(t, cols, "RightSpoilerDeg_5")
	require.NotContains(t, cols, "Health_10")
}

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		w, err := NewWriter(Options{Dir: dir, MaxSamplesPerFile: 100, MaxFiles: 2, Compress: compress})
		require.NoError(t, err)

		var in []Record
		for i := uint64(0); i < 10; i++ {
			r := sample(i)
			in = append(in, r)
			require.NoError(t, w.Write(&r))
		}
		path := w.Path()
		require.NoError(t, w.Close())
		require.Error(t, w.Write(&in[0]))

		rd, err := Open(path, compress)
		require.NoError(t, err)
		require.Equal(t, Version, rd.Version())
		out, err := rd.ReadAll()
		require.NoError(t, err)
		require.NoError(t, rd.Close())
		require.Equal(t, in, out)
	}
}

func TestUncompressedFileLayout(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Options{Dir: dir, MaxSamplesPerFile: 10, MaxFiles: 1})
	require.NoError(t, err)
	r := sample(1)
	require.NoError(t, w.Write(&r))
	path := w.Path()
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 8+RecordSize+2)
	require.Equal(t, Version, binary.LittleEndian.Uint64(raw[:8]))
	require.Equal(t, crc16(raw[8:8+RecordSize]), binary.LittleEndian.Uint16(raw[8+RecordSize:]))
}

func TestReaderVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, Version+1)

	_, err := NewReader(bytes.NewReader(buf.Bytes()), false)
	require.ErrorIs(t, err, ErrVersionMismatch)

	v, err := ReadVersion(bytes.NewReader(buf.Bytes()), false)
	require.NoError(t, err)
	require.Equal(t, Version+1, v)
}

func TestReaderChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, Version)
	r := sample(7)
	_ = binary.Write(&buf, binary.LittleEndian, &r)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0xdead))

	rd, err := NewReader(&buf, false)
	require.NoError(t, err)
	_, err = rd.Next()
	require.ErrorIs(t, err, ErrChecksum)
}

func TestReaderTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, Version)
	buf.Write(make([]byte, RecordSize/2))

	rd, err := NewReader(&buf, false)
	require.NoError(t, err)
	_, err = rd.Next()
	require.Error(t, err)
}

func TestWriterRotationKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Options{Dir: dir, MaxSamplesPerFile: 3, MaxFiles: 2})
	require.NoError(t, err)
	for i := uint64(0); i < 10; i++ {
		r := sample(i)
		require.NoError(t, w.Write(&r))
	}
	require.NoError(t, w.Close())

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Ten samples at three per file: the last two files hold ticks 6..9.
	var ticks []uint64
	for _, f := range files {
		rd, err := Open(f, false)
		require.NoError(t, err)
		recs, err := rd.ReadAll()
		require.NoError(t, err)
		require.NoError(t, rd.Close())
		for _, r := range recs {
			ticks = append(ticks, r.Tick)
		}
	}
	require.Equal(t, []uint64{6, 7, 8, 9}, ticks)
}

func TestNewWriterRejectsBadOptions(t *testing.T) {
	_, err := NewWriter(Options{})
	require.Error(t, err)
	_, err = NewWriter(Options{Dir: t.TempDir(), MaxSamplesPerFile: 0, MaxFiles: 1})
	require.Error(t, err)
}

func TestFilesIgnoresOtherEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fbw-20260101-000000-0001.fdr"), nil, 0o644))
	files, err := Files(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "fbw-20260101-000000-0001.fdr")}, files)
}

func TestPlayWaitsRecordedIntervals(t *testing.T) {
	recs := []Record{sample(0), sample(1), sample(2)}
	recs[2].TimeS = 0 // restart

	var got []uint64
	fs := &fakeSleeper{}
	err := Play(recs, 2.0, false, fs, func(r *Record) error {
		got = append(got, r.Tick)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, got)
	require.Equal(t, []time.Duration{25 * time.Millisecond}, fs.slept)
}

func TestPlayRejectsBadArguments(t *testing.T) {
	recs := []Record{sample(0)}
	cb := func(*Record) error { return nil }
	require.Error(t, Play(recs, 0, false, nil, cb))
	require.Error(t, Play(nil, 1, false, nil, cb))
	require.Error(t, Play(recs, 1, false, nil, nil))
}
