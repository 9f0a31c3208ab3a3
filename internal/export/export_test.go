package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"employee-directory/internal/domain"
)

func sampleGroups() []domain.PositionGroup {
	return []domain.PositionGroup{
		{
			Position: domain.PositionIOS,
			Employees: []domain.Employee{
				{
					FirstName:          "Anna",
					LastName:           "Berg",
					Position:           domain.PositionIOS,
					Contact:            domain.ContactDetails{Email: "anna@example.com", Phone: "+372 5550101"},
					Projects:           []string{"Atlas", " ", "Beacon\nNext"},
					Location:           "tallinn",
					HasMatchingContact: true,
				},
			},
		},
		{Position: domain.PositionPM, Employees: []domain.Employee{}},
		{
			Position: domain.PositionWeb,
			Employees: []domain.Employee{
				{FirstName: "Carl", LastName: "Dahl", Position: domain.PositionWeb, Contact: domain.ContactDetails{Email: "carl@example.com"}},
			},
		},
	}
}

func TestWriteDirectoryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDirectoryCSV(&buf, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "\r\n") {
		t.Error("Expected CRLF line endings")
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(directoryHeader, ",") {
		t.Errorf("Unexpected header %v", rows[0])
	}

	anna := rows[1]
	expected := []string{"IOS", "Anna", "Berg", "anna@example.com", "+372 5550101", "Atlas | Beacon Next", "tallinn", "true"}
	for i := range expected {
		if anna[i] != expected[i] {
			t.Errorf("column %s = %q, want %q", directoryHeader[i], anna[i], expected[i])
		}
	}

	carl := rows[2]
	if carl[0] != "WEB" {
		t.Errorf("Expected WEB, got %q", carl[0])
	}
	if carl[4] != "" {
		t.Errorf("Expected empty phone, got %q", carl[4])
	}
	if carl[5] != "" {
		t.Errorf("Expected empty projects, got %q", carl[5])
	}
	if carl[7] != "false" {
		t.Errorf("Expected HAS_CONTACT false, got %q", carl[7])
	}
}

func TestWriteDirectoryXML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDirectoryXML(&buf, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(buf.String(), xml.Header) {
		t.Error("Expected XML header")
	}

	var got xmlDirectory
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Expected valid XML, got %v", err)
	}
	if len(got.Groups) != 3 {
		t.Fatalf("Expected 3 groups (empty PM kept), got %d", len(got.Groups))
	}
	if got.Groups[1].Position != "PM" || len(got.Groups[1].Employees) != 0 {
		t.Errorf("Expected empty PM group, got %+v", got.Groups[1])
	}

	anna := got.Groups[0].Employees[0]
	if !anna.HasContact || anna.Projects == nil || len(anna.Projects.Project) != 2 {
		t.Errorf("Unexpected employee %+v", anna)
	}

	carl := got.Groups[2].Employees[0]
	if carl.Phone != "" || carl.Projects != nil {
		t.Errorf("Expected no phone and no projects, got %+v", carl)
	}
	if strings.Contains(buf.String(), "<phone></phone>") {
		t.Error("Expected missing phone to be omitted")
	}
}

func TestWriteDirectoryYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDirectoryYAML(&buf, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got []yamlGroup
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Expected valid YAML, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(got))
	}
	if got[1].Position != "PM" || len(got[1].Employees) != 0 {
		t.Errorf("Expected empty PM group, got %+v", got[1])
	}
	anna := got[0].Employees[0]
	if len(anna.Projects) != 2 || anna.Projects[1] != "Beacon Next" || !anna.HasContact {
		t.Errorf("Unexpected employee %+v", anna)
	}
	if strings.Contains(buf.String(), "phone: \"\"") {
		t.Error("Expected missing phone to be omitted")
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")

	csvPath := filepath.Join(dir, "directory.csv")
	if err := WriteDirectoryCSVFile(csvPath, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fi, err := os.Stat(csvPath); err != nil || fi.Size() == 0 {
		t.Errorf("Expected non-empty CSV file, got %v", err)
	}

	xmlPath := filepath.Join(dir, "directory.xml")
	if err := WriteDirectoryXMLFile(xmlPath, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fi, err := os.Stat(xmlPath); err != nil || fi.Size() == 0 {
		t.Errorf("Expected non-empty XML file, got %v", err)
	}

	yamlPath := filepath.Join(dir, "directory.yaml")
	if err := WriteDirectoryYAMLFile(yamlPath, sampleGroups()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fi, err := os.Stat(yamlPath); err != nil || fi.Size() == 0 {
		t.Errorf("Expected non-empty YAML file, got %v", err)
	}
}

func TestCleanStrings(t *testing.T) {
	got := cleanStrings([]string{" a ", "", "b\r\nc", "  "})
	if strings.Join(got, "|") != "a|b  c" {
		t.Errorf("cleanStrings = %q", got)
	}
	if len(cleanStrings(nil)) != 0 {
		t.Error("Expected empty result for nil input")
	}
}
