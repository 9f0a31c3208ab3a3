package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"employee-directory/internal/domain"
)

type yamlGroup struct {
	Position  string         `yaml:"position"`
	Employees []yamlEmployee `yaml:"employees"`
}

type yamlEmployee struct {
	FirstName  string   `yaml:"first_name"`
	LastName   string   `yaml:"last_name"`
	Email      string   `yaml:"email"`
	Phone      string   `yaml:"phone,omitempty"`
	Location   string   `yaml:"location,omitempty"`
	Projects   []string `yaml:"projects,omitempty"`
	HasContact bool     `yaml:"has_contact"`
}

// WriteDirectoryYAML writes the groups as a YAML sequence, empty groups included.
func WriteDirectoryYAML(w io.Writer, groups []domain.PositionGroup) error {
	out := make([]yamlGroup, 0, len(groups))
	for _, g := range groups {
		yg := yamlGroup{Position: g.Position.String(), Employees: make([]yamlEmployee, 0, len(g.Employees))}
		for _, e := range g.Employees {
			yg.Employees = append(yg.Employees, yamlEmployee{
				FirstName:  e.FirstName,
				LastName:   e.LastName,
				Email:      e.Contact.Email,
				Phone:      e.Contact.Phone,
				Location:   e.Location,
				Projects:   cleanStrings(e.Projects),
				HasContact: e.HasMatchingContact,
			})
		}
		out = append(out, yg)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func WriteDirectoryYAMLFile(outPath string, groups []domain.PositionGroup) error {
	return writeFile(outPath, func(w io.Writer) error { return WriteDirectoryYAML(w, groups) })
}
