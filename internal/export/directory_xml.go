package export

import (
	"encoding/xml"
	"io"

	"employee-directory/internal/domain"
)

/*
<directory>
  <group position="IOS">
    <employee has_contact="false">
      <first_name>Anna</first_name>
      <last_name>Berg</last_name>
      <email>anna@example.com</email>
      <phone>+372 5550101</phone>
      <location>tallinn</location>
      <projects>
        <project>Atlas</project>
      </projects>
    </employee>
  </group>
</directory>
*/

type xmlDirectory struct {
	XMLName xml.Name   `xml:"directory"`
	Groups  []xmlGroup `xml:"group"`
}

type xmlGroup struct {
	Position  string        `xml:"position,attr"`
	Employees []xmlEmployee `xml:"employee"`
}

type xmlEmployee struct {
	HasContact bool         `xml:"has_contact,attr"`
	FirstName  string       `xml:"first_name"`
	LastName   string       `xml:"last_name"`
	Email      string       `xml:"email"`
	Phone      string       `xml:"phone,omitempty"`
	Location   string       `xml:"location,omitempty"`
	Projects   *xmlProjects `xml:"projects,omitempty"`
}

type xmlProjects struct {
	Project []string `xml:"project"`
}

// WriteDirectoryXML writes the grouped directory. Empty groups are kept so
// exhaustive output round-trips with all positions present.
func WriteDirectoryXML(w io.Writer, groups []domain.PositionGroup) error {
	out := xmlDirectory{Groups: make([]xmlGroup, 0, len(groups))}
	for _, g := range groups {
		xg := xmlGroup{Position: g.Position.String()}
		for _, e := range g.Employees {
			xe := xmlEmployee{
				HasContact: e.HasMatchingContact,
				FirstName:  e.FirstName,
				LastName:   e.LastName,
				Email:      e.Contact.Email,
				Phone:      e.Contact.Phone,
				Location:   e.Location,
			}
			if p := cleanStrings(e.Projects); len(p) > 0 {
				xe.Projects = &xmlProjects{Project: p}
			}
			xg.Employees = append(xg.Employees, xe)
		}
		out.Groups = append(out.Groups, xg)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteDirectoryXMLFile creates outPath (and its directory) and writes the XML.
func WriteDirectoryXMLFile(outPath string, groups []domain.PositionGroup) error {
	return writeFile(outPath, func(w io.Writer) error { return WriteDirectoryXML(w, groups) })
}
