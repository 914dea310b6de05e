package wiki

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fyrsmithlabs/rmwiki/internal/rickmorty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ok", KindOK.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "kind(42)", Kind(42).String())

	b, err := json.Marshal(map[string]Kind{"kind": KindStatus})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"status"}`, string(b))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"nil", nil, KindOK, 0},
		{"invalid", fmt.Errorf("wrap: %w", rickmorty.ErrInvalidID), KindInvalid, 0},
		{"status", fmt.Errorf("wrap: %w", &rickmorty.StatusError{Code: 503}), KindStatus, 503},
		{"decode", fmt.Errorf("%w: bad json", rickmorty.ErrDecode), KindDecode, 0},
		{"transport", errors.New("connection refused"), KindTransport, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classify(tt.err)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.err, res.Err)
		})
	}
}

func TestResult_Message(t *testing.T) {
	assert.Empty(t, Result{Kind: KindOK}.Message())
	assert.Contains(t, Result{Kind: KindStatus, Status: 500}.Message(), "500")
	assert.Contains(t, Result{Kind: KindTransport}.Message(), "could not be reached")
	assert.Contains(t, Result{Kind: KindInvalid}.Message(), "not a valid")
	assert.Contains(t, Result{Kind: KindDecode}.Message(), "could not read")
}

func TestResult_MessageByOperation(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"list past last page", Result{Kind: KindStatus, Status: 404, Op: OpCharactersPage}, "That page of characters does not exist."},
		{"first page missing", Result{Kind: KindStatus, Status: 404, Op: OpCharacters}, "That page of characters does not exist."},
		{"invalid page", Result{Kind: KindInvalid, Op: OpCharactersPage}, "That is not a valid page number."},
		{"unknown character", Result{Kind: KindStatus, Status: 404, Op: OpCharacter}, "No character with that id exists."},
		{"invalid id", Result{Kind: KindInvalid, Op: OpCharacter}, "That is not a valid character id."},
		{"list upstream error", Result{Kind: KindStatus, Status: 503, Op: OpCharactersPage}, "The character API answered with status 503."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Message())
		})
	}
}

func TestKind_TextRoundTrip(t *testing.T) {
	for kind := range kindNames {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, kind, got)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("exploded")))
}
