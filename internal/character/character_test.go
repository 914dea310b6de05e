package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacter_StatusClass(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{StatusAlive, "status--alive"},
		{StatusDead, "status--dead"},
		{StatusUnknown, "status--unknown"},
		{"", "status--unknown"},
		{"DEAD", "status--dead"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			c := Character{Status: tt.status}
			assert.Equal(t, tt.want, c.StatusClass())
		})
	}
}

func TestPageInfo_Navigation(t *testing.T) {
	first := PageInfo{Count: 826, Pages: 42, Page: 1, Next: "https://example.test/character?page=2"}
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	last := PageInfo{Count: 826, Pages: 42, Page: 42, Prev: "https://example.test/character?page=41"}
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrev())
}
