// Package directory turns the per-office employee lists into the grouped,
// display-ready directory: merge, dedup, filter, then group and sort.
//
// Every function here is pure and synchronous. Nothing returns an error.
package directory

import (
	"sort"
	"strings"

	"employee-directory/internal/domain"
)

// Mode selects whether empty position groups are emitted.
type Mode int

const (
	// Sparse lists only positions with at least one member.
	Sparse Mode = iota
	// Exhaustive lists all seven positions, empty ones included.
	Exhaustive
)

func (m Mode) String() string {
	if m == Exhaustive {
		return "exhaustive"
	}
	return "sparse"
}

// ParseMode accepts "sparse" and "exhaustive". Anything else reports false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return Sparse, true
	case "exhaustive", "all":
		return Exhaustive, true
	}
	return Sparse, false
}

// ModeFor is the default selection rule: the unfiltered initial load is
// sparse, any search text switches to exhaustive.
func ModeFor(query string) Mode {
	if strings.TrimSpace(query) == "" {
		return Sparse
	}
	return Exhaustive
}

// Merge concatenates the source lists in argument order.
func Merge(lists ...[]domain.Employee) []domain.Employee {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]domain.Employee, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Deduplicate keeps the first employee seen for each identity key.
func Deduplicate(employees []domain.Employee) []domain.Employee {
	seen := make(map[string]struct{}, len(employees))
	out := make([]domain.Employee, 0, len(employees))
	for _, e := range employees {
		k := e.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Filter keeps employees whose name, email, any project or position label
// contains query, ignoring case. An empty query keeps everyone; any other
// query is matched as typed, spaces included.
func Filter(employees []domain.Employee, query string) []domain.Employee {
	q := strings.ToLower(query)
	out := make([]domain.Employee, 0, len(employees))
	for _, e := range employees {
		if q == "" || Matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether e matches an already-lowercased query.
func Matches(e domain.Employee, q string) bool {
	if contains(e.FirstName, q) || contains(e.LastName, q) || contains(e.Contact.Email, q) {
		return true
	}
	for _, p := range e.Projects {
		if contains(p, q) {
			return true
		}
	}
	return contains(e.Position.String(), q)
}

func contains(field, q string) bool {
	return strings.Contains(strings.ToLower(field), q)
}

// Group partitions employees by position. Members are sorted by last name
// with a stable byte-wise comparison; groups follow the canonical position order.
func Group(employees []domain.Employee, mode Mode) []domain.PositionGroup {
	byPos := make(map[domain.Position][]domain.Employee, len(domain.Positions()))
	for _, e := range employees {
		byPos[e.Position] = append(byPos[e.Position], e)
	}

	out := make([]domain.PositionGroup, 0, len(byPos))
	for _, p := range domain.Positions() {
		members := byPos[p]
		if len(members) == 0 && mode == Sparse {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].LastName < members[j].LastName
		})
		if members == nil {
			members = []domain.Employee{}
		}
		out = append(out, domain.PositionGroup{Position: p, Employees: members})
	}
	return out
}

// ApplyContacts returns a copy of employees with HasMatchingContact set for
// every identity key present in keys.
func ApplyContacts(employees []domain.Employee, keys map[string]struct{}) []domain.Employee {
	out := make([]domain.Employee, len(employees))
	for i, e := range employees {
		_, e.HasMatchingContact = keys[e.Key()]
		out[i] = e
	}
	return out
}

// Find returns the employee with the given identity key.
func Find(employees []domain.Employee, key string) (domain.Employee, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, e := range employees {
		if e.Key() == key {
			return e, true
		}
	}
	return domain.Employee{}, false
}

// Count sums the members across groups.
func Count(groups []domain.PositionGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Employees)
	}
	return n
}
