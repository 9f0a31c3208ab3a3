package server

import (
	"time"

	"employee-directory/internal/directory"
	"employee-directory/internal/domain"
)

type Employee struct {
	Key                string   `json:"key"`
	FirstName          string   `json:"fname"`
	LastName           string   `json:"lname"`
	Position           string   `json:"position"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone,omitempty"`
	Projects           []string `json:"projects"`
	Location           string   `json:"location,omitempty"`
	HasMatchingContact bool     `json:"has_matching_contact"`
}

type Group struct {
	Position  string     `json:"position"`
	Employees []Employee `json:"employees"`
}

type DirectoryResponse struct {
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Total     int       `json:"total"`
	Matched   int       `json:"matched"`
	FetchedAt time.Time `json:"fetched_at"`
	Groups    []Group   `json:"groups"`
}

type RefreshResponse struct {
	Cycle     uint64         `json:"cycle"`
	Employees int            `json:"employees"`
	Fetched   map[string]int `json:"fetched"`
	TookMS    int64          `json:"took_ms"`
	Error     string         `json:"error,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func toEmployee(e domain.Employee) Employee {
	projects := e.Projects
	if projects == nil {
		projects = []string{}
	}
	return Employee{
		Key:                e.Key(),
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Position:           e.Position.String(),
		Email:              e.Contact.Email,
		Phone:              e.Contact.Phone,
		Projects:           projects,
		Location:           e.Location,
		HasMatchingContact: e.HasMatchingContact,
	}
}

func toGroups(groups []domain.PositionGroup) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		members := make([]Employee, 0, len(g.Employees))
		for _, e := range g.Employees {
			members = append(members, toEmployee(e))
		}
		out = append(out, Group{Position: g.Position.String(), Employees: members})
	}
	return out
}

func toDirectoryResponse(query string, fetchedAt time.Time, res directory.Result) DirectoryResponse {
	return DirectoryResponse{
		Query:     query,
		Mode:      res.Mode.String(),
		Total:     len(res.Employees),
		Matched:   len(res.Matched),
		FetchedAt: fetchedAt,
		Groups:    toGroups(res.Groups),
	}
}
