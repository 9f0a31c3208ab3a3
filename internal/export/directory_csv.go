package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"employee-directory/internal/domain"
)

// Keep header order EXACT; downstream imports are positional.
var directoryHeader = []string{
	"POSITION",
	"FIRST_NAME",
	"LAST_NAME",
	"EMAIL",
	"PHONE",
	"PROJECTS",
	"LOCATION",
	"HAS_CONTACT",
}

// WriteDirectoryCSV writes one row per employee, groups in the given order.
func WriteDirectoryCSV(w io.Writer, groups []domain.PositionGroup) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(directoryHeader); err != nil {
		return err
	}
	for _, g := range groups {
		for _, e := range g.Employees {
			if err := cw.Write(toRow(g.Position, e)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDirectoryCSVFile creates outPath (and its directory) and writes the CSV.
func WriteDirectoryCSVFile(outPath string, groups []domain.PositionGroup) error {
	return writeFile(outPath, func(w io.Writer) error { return WriteDirectoryCSV(w, groups) })
}

func toRow(pos domain.Position, e domain.Employee) []string {
	return []string{
		pos.String(),
		e.FirstName,
		e.LastName,
		e.Contact.Email,
		strings.TrimSpace(e.Contact.Phone),
		strings.Join(cleanStrings(e.Projects), " | "),
		e.Location,
		strconv.FormatBool(e.HasMatchingContact),
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		s = strings.ReplaceAll(s, "\n", " ")
		s = strings.ReplaceAll(s, "\r", " ")
		out = append(out, s)
	}
	return out
}

func writeFile(outPath string, write func(io.Writer) error) error {
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("export: create: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("export: write %s: %w", outPath, err)
	}
	return f.Close()
}
