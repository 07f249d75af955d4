// internal/pool/pool.go
//
// The pool of candidate flags.
//
// Responsibilities:
//   - Load the ordered pool from POOL_FILE or fall back to the embedded default.
//   - Keep identifiers unique; order is preserved because it defines the
//     domain of the daily permutation.
//   - Lookup by identifier, exact display-name resolution and the
//     substring search that backs autocomplete.
//
// File format (JSON):
//   [{"code": "de", "name": "Germany"}, ...]

package pool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/flagle/assets"
)

// ErrEmpty is returned for a pool without entries.
var ErrEmpty = errors.New("pool: no entries")

// Entry is one candidate target.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Pool is an immutable, ordered set of entries.
type Pool struct {
	entries []Entry
	byCode  map[string]int
	byName  map[string]int // lowercase display name
}

// New validates entries and builds the lookup indexes.
func New(entries []Entry) (*Pool, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	p := &Pool{
		entries: make([]Entry, 0, len(entries)),
		byCode:  make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		e.Code = strings.TrimSpace(e.Code)
		e.Name = strings.TrimSpace(e.Name)
		if e.Code == "" {
			return nil, fmt.Errorf("pool: entry %d has no code", len(p.entries))
		}
		if _, dup := p.byCode[e.Code]; dup {
			return nil, fmt.Errorf("pool: duplicate code %q", e.Code)
		}
		if e.Name == "" {
			e.Name = e.Code
		}
		p.byCode[e.Code] = len(p.entries)
		if _, taken := p.byName[strings.ToLower(e.Name)]; !taken {
			p.byName[strings.ToLower(e.Name)] = len(p.entries)
		}
		p.entries = append(p.entries, e)
	}
	return p, nil
}

// Parse decodes a JSON pool file.
func Parse(data []byte) (*Pool, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("pool: decode: %w", err)
	}
	return New(entries)
}

// Load reads the pool from path, or the embedded default when path is empty.
func Load(path string) (*Pool, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.Countries()
	}
	if err != nil {
		return nil, fmt.Errorf("pool: read: %w", err)
	}
	return Parse(data)
}

// Len returns the number of entries.
func (p *Pool) Len() int { return len(p.entries) }

// Entries returns a copy of the entries in pool order.
func (p *Pool) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Codes returns the identifiers in pool order.
func (p *Pool) Codes() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Code
	}
	return out
}

// Lookup finds an entry by identifier.
func (p *Pool) Lookup(code string) (Entry, bool) {
	i, ok := p.byCode[code]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// DisplayName returns the entry name, or code itself when unknown.
func (p *Pool) DisplayName(code string) string {
	if e, ok := p.Lookup(code); ok {
		return e.Name
	}
	return code
}

// ResolveName matches a display name exactly, ignoring case and surrounding space.
func (p *Pool) ResolveName(name string) (Entry, bool) {
	i, ok := p.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Search returns entries whose name contains q (case-insensitive), skipping
// codes in exclude. An empty query matches everything.
func (p *Pool) Search(q string, exclude []string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	skip := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	out := []Entry{}
	for _, e := range p.entries {
		if _, ok := skip[e.Code]; ok {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
