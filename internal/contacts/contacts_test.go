package contacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-directory/internal/domain"
)

const addressBook = "First_Name,Last_Name,Email,Phone\n" +
	"anna,BERG,anna@home.example,+372 1\n" +
	"Mari,Tamm,,\n" +
	",,ghost@example.com,\n"

func TestLoadCSV(t *testing.T) {
	s, err := LoadCSV(strings.NewReader(addressBook))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	e, ok := s.Lookup("anna berg")
	require.True(t, ok)
	assert.Equal(t, "anna@home.example", e.Email)
	assert.Equal(t, "+372 1", e.Phone)
}

func TestLoadCSVMissingColumns(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("name,email\nAnna,a@b\n"))
	assert.Error(t, err)
}

func TestLoadCSVEmpty(t *testing.T) {
	s, err := LoadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(addressBook), 0o600))

	s, err := LoadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestMatchKeys(t *testing.T) {
	s := NewStore([]Entry{{FirstName: "Anna", LastName: "Berg"}, {FirstName: "Someone", LastName: "Else"}})

	employees := []domain.Employee{
		{FirstName: "ANNA", LastName: "berg", Position: domain.PositionIOS},
		{FirstName: "Carl", LastName: "Dahl", Position: domain.PositionWeb},
	}

	keys, err := s.MatchKeys(context.Background(), employees)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"anna berg": {}}, keys)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.MatchKeys(ctx, employees)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoneMatchesNothing(t *testing.T) {
	var m Matcher = None{}
	keys, err := m.MatchKeys(context.Background(), []domain.Employee{{FirstName: "Anna", LastName: "Berg"}})
	require.NoError(t, err)
	assert.Empty(t, keys)
}
