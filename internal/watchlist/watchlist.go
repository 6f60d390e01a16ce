// Package watchlist loads the set of polls the results watcher follows.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a single watched poll declared in the watchlist file.
type Entry struct {
	PollID  int64  `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (e Entry) EnabledValue() bool {
	if e.Enabled == nil {
		return true
	}
	return *e.Enabled
}

type file struct {
	Polls []Entry `json:"polls" yaml:"polls"`
}

// Watchlist is an immutable, validated set of entries.
type Watchlist struct {
	entries []Entry
	idx     map[int64]Entry
}

// Load reads a YAML or JSON watchlist from path.
func Load(path string) (*Watchlist, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("watchlist file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}

	parsed, err := parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return New(parsed.Polls)
}

// New validates entries and builds a Watchlist. An empty list is allowed.
func New(entries []Entry) (*Watchlist, error) {
	wl := &Watchlist{
		entries: make([]Entry, 0, len(entries)),
		idx:     make(map[int64]Entry, len(entries)),
	}
	for i := range entries {
		e := sanitize(entries[i])
		if e.PollID <= 0 {
			return nil, fmt.Errorf("polls[%d]: id must be positive", i)
		}
		if _, exists := wl.idx[e.PollID]; exists {
			return nil, fmt.Errorf("duplicate poll id %d", e.PollID)
		}
		wl.entries = append(wl.entries, e)
		wl.idx[e.PollID] = e
	}
	return wl, nil
}

func parse(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out file
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return file{}, errors.New("watchlist file format not recognized (expected YAML or JSON)")
}

func sanitize(e Entry) Entry {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		e.Name = fmt.Sprintf("poll-%d", e.PollID)
	}
	if e.Enabled == nil {
		def := true
		e.Enabled = &def
	}
	return e
}

// All returns a copy of every entry in file order.
func (w *Watchlist) All() []Entry {
	if w == nil {
		return nil
	}
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Enabled returns the entries that are enabled.
func (w *Watchlist) Enabled() []Entry {
	if w == nil {
		return nil
	}
	out := make([]Entry, 0, len(w.entries))
	for _, e := range w.entries {
		if e.EnabledValue() {
			out = append(out, e)
		}
	}
	return out
}

// ByID returns the entry for pollID.
func (w *Watchlist) ByID(pollID int64) (Entry, bool) {
	if w == nil {
		return Entry{}, false
	}
	e, ok := w.idx[pollID]
	return e, ok
}

// Merge returns the enabled entries followed by extra entries whose poll id is
// not already listed. Disabled entries suppress a matching extra.
func (w *Watchlist) Merge(extra []Entry) []Entry {
	out := w.Enabled()
	seen := make(map[int64]struct{}, len(out)+len(extra))
	for _, e := range w.All() {
		seen[e.PollID] = struct{}{}
	}
	for _, e := range extra {
		if _, ok := seen[e.PollID]; ok || e.PollID <= 0 {
			continue
		}
		seen[e.PollID] = struct{}{}
		out = append(out, sanitize(e))
	}
	return out
}
