// Package export exposes every produced bus word under a stable name and
// encodes the result as msgpack for external consumers.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"fbwsim/internal/bus"
)

// Source is anything that can publish its words by name.
type Source interface {
	Publish(emit bus.Emitter)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(emit bus.Emitter)

func (f SourceFunc) Publish(emit bus.Emitter) { f(emit) }

type Snapshot struct {
	Tick  uint64               `msgpack:"tick"`
	TimeS float64              `msgpack:"time_s"`
	Words map[string]bus.Value `msgpack:"words"`
}

// Collect gathers the words of all sources. A name published twice keeps
// the last value.
func Collect(tick uint64, timeS float64, sources ...Source) Snapshot {
	s := Snapshot{Tick: tick, TimeS: timeS, Words: make(map[string]bus.Value, 512)}
	for _, src := range sources {
		if src == nil {
			continue
		}
		src.Publish(func(name string, v bus.Value) {
			s.Words[name] = v
		})
	}
	return s
}

// Names returns the word names in sorted order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Words))
	for n := range s.Words {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Encode serializes s with sorted map keys so equal snapshots encode to
// equal bytes.
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
