package domain

import "strings"

// ContactDetails holds how an employee can be reached. Phone is optional.
type ContactDetails struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Employee is one directory entry as published by an office endpoint.
// Location and HasMatchingContact are derived after fetching and are never
// read from the wire.
type Employee struct {
	FirstName string         `json:"fname"`
	LastName  string         `json:"lname"`
	Position  Position       `json:"position"`
	Contact   ContactDetails `json:"contact_details"`
	Projects  []string       `json:"projects"`

	Location           string `json:"-"`
	HasMatchingContact bool   `json:"-"`
}

// Key is the identity key used for dedup and contact matching.
// Two different people with the same name share a key.
func (e Employee) Key() string {
	return IdentityKey(e.FirstName, e.LastName)
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e Employee) HasPhone() bool {
	return strings.TrimSpace(e.Contact.Phone) != ""
}

// IdentityKey lowercases "first last".
func IdentityKey(first, last string) string {
	return strings.ToLower(first + " " + last)
}

// PositionGroup is one display section: a position and its members sorted by last name.
type PositionGroup struct {
	Position  Position   `json:"position"`
	Employees []Employee `json:"employees"`
}
