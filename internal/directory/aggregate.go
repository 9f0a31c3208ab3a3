package directory

import "employee-directory/internal/domain"

// Options drives one Aggregate call.
type Options struct {
	Query string
	// Mode is used as-is when ModeSet is true, otherwise ModeFor(Query) decides.
	Mode    Mode
	ModeSet bool
	// Contacts holds identity keys with a local address book entry. Nil means none.
	Contacts map[string]struct{}
}

// Result is the output of one pipeline run.
type Result struct {
	// Employees is the merged, deduplicated list before filtering.
	Employees []domain.Employee
	// Matched is the filtered subset, in merge order.
	Matched []domain.Employee
	Groups  []domain.PositionGroup
	Mode    Mode
}

// Aggregate runs merge, dedup, contact flagging, filter and group in that order.
func Aggregate(sources [][]domain.Employee, opts Options) Result {
	all := Deduplicate(Merge(sources...))
	all = ApplyContacts(all, opts.Contacts)
	return View(all, opts)
}

// View runs filter and group over an already deduplicated list.
func View(employees []domain.Employee, opts Options) Result {
	mode := opts.Mode
	if !opts.ModeSet {
		mode = ModeFor(opts.Query)
	}
	matched := Filter(employees, opts.Query)

	return Result{
		Employees: employees,
		Matched:   matched,
		Groups:    Group(matched, mode),
		Mode:      mode,
	}
}
