package domain

import (
	"encoding/json"
	"fmt"
)

// Position is the fixed job category an employee belongs to.
// The zero value is not a valid position.
type Position int

const (
	PositionAndroid Position = iota + 1
	PositionIOS
	PositionOther
	PositionPM
	PositionSales
	PositionTester
	PositionWeb
)

// positions is the canonical order used for grouping and display.
// Keep it explicit: ordering must not depend on label spelling.
var positions = []Position{
	PositionAndroid,
	PositionIOS,
	PositionOther,
	PositionPM,
	PositionSales,
	PositionTester,
	PositionWeb,
}

var positionLabels = map[Position]string{
	PositionAndroid: "ANDROID",
	PositionIOS:     "IOS",
	PositionOther:   "OTHER",
	PositionPM:      "PM",
	PositionSales:   "SALES",
	PositionTester:  "TESTER",
	PositionWeb:     "WEB",
}

// Positions returns every position in canonical order.
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// Rank is the position's index in the canonical order, or -1 when unknown.
func (p Position) Rank() int {
	for i, q := range positions {
		if q == p {
			return i
		}
	}
	return -1
}

func (p Position) Valid() bool {
	_, ok := positionLabels[p]
	return ok
}

// String returns the wire token, which is also the display name.
func (p Position) String() string {
	if s, ok := positionLabels[p]; ok {
		return s
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// ParsePosition maps a wire token to a Position. Only the exact uppercase
// labels are accepted.
func ParsePosition(s string) (Position, error) {
	for p, label := range positionLabels {
		if label == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

func (p Position) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid position %d", int(p))
	}
	return json.Marshal(p.String())
}

// UnmarshalJSON rejects tokens outside the fixed set.
func (p *Position) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("position must be a string: %w", err)
	}
	v, err := ParsePosition(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
