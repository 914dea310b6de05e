package rickmorty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRef(t *testing.T) {
	ref := func(s string) *string { return &s }

	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"nil", nil, ""},
		{"empty", ref(""), ""},
		{"page url", ref("https://rickandmortyapi.com/api/character/?page=7"), "7"},
		{"no page param", ref("https://rickandmortyapi.com/api/character/"), "https://rickandmortyapi.com/api/character/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageRef(tt.in))
		})
	}
}

func TestAPICharacter_DropsWireOnlyFields(t *testing.T) {
	got := apiCharacter{
		ID:       1,
		Name:     "Rick",
		Type:     "Scientist",
		Origin:   apiPlace{Name: "Earth", URL: "https://example/1"},
		Location: apiPlace{Name: "Citadel", URL: "https://example/3"},
		Episode:  []string{"e1"},
	}.toCharacter()

	assert.Equal(t, "Earth", got.Origin.Name)
	assert.Equal(t, "Citadel", got.Location.Name)
	assert.Equal(t, 1, got.ID)
}
