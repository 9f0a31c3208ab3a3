// Package contacts answers which directory entries already exist in a local
// address book. Matching is by identity key only.
package contacts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"employee-directory/internal/domain"
)

// Matcher returns the identity keys of employees that have a local contact.
type Matcher interface {
	MatchKeys(ctx context.Context, employees []domain.Employee) (map[string]struct{}, error)
}

// None matches nobody.
type None struct{}

func (None) MatchKeys(context.Context, []domain.Employee) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

// Entry is one local address book record.
type Entry struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (e Entry) Key() string { return domain.IdentityKey(e.FirstName, e.LastName) }

// Store is an in-memory address book.
type Store struct {
	entries []Entry
	keys    map[string]struct{}
}

func NewStore(entries []Entry) *Store {
	s := &Store{entries: entries, keys: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		s.keys[e.Key()] = struct{}{}
	}
	return s
}

func (s *Store) Len() int { return len(s.entries) }

// Lookup returns the first contact with the given identity key.
func (s *Store) Lookup(key string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Key() == key {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Store) MatchKeys(ctx context.Context, employees []domain.Employee) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, e := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := e.Key()
		if _, ok := s.keys[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

// LoadCSV reads an address book export. The header row must contain
// first_name and last_name columns; email and phone are optional.
// Column names are matched case-insensitively.
func LoadCSV(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewStore(nil), nil
		}
		return nil, fmt.Errorf("contacts: read header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	fi, okF := cols["first_name"]
	li, okL := cols["last_name"]
	if !okF || !okL {
		return nil, errors.New("contacts: header must include first_name and last_name")
	}

	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("contacts: line %d: %w", line, err)
		}
		if fi >= len(rec) || li >= len(rec) {
			continue
		}
		e := Entry{
			FirstName: strings.TrimSpace(rec[fi]),
			LastName:  strings.TrimSpace(rec[li]),
			Email:     get(rec, "email"),
			Phone:     get(rec, "phone"),
		}
		if e.FirstName == "" && e.LastName == "" {
			continue
		}
		entries = append(entries, e)
	}
	return NewStore(entries), nil
}

// LoadCSVFile opens path and calls LoadCSV.
func LoadCSVFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contacts: open: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}
