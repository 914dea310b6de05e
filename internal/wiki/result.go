package wiki

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/rickmorty"
)

// Loader operation names, as recorded in Result.Op and in logs.
const (
	OpCharacters     = "GetCharactersAPI"
	OpCharactersPage = "GetCharactersPage"
	OpCharacter      = "GetSingleCharacter"
)

// Kind classifies the outcome of a loader call.
type Kind int

const (
	KindOK Kind = iota
	// KindInvalid means the input was rejected before any request was sent.
	KindInvalid
	// KindTransport covers network failures, timeouts and cancellation.
	KindTransport
	// KindStatus means the upstream answered with a non-2xx status.
	KindStatus
	// KindDecode means the upstream body could not be parsed.
	KindDecode
)

var kindNames = map[Kind]string{
	KindOK:        "ok",
	KindInvalid:   "invalid",
	KindTransport: "transport",
	KindStatus:    "status",
	KindDecode:    "decode",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", text)
}

// Result reports how a loader call ended. Failures never reach the stores;
// the Result is the only place they are visible.
//
// On success Result also carries the data that was dispatched. The stores
// are shared between callers, so a caller rendering its own load must use
// Page or Character rather than reading the store back.
type Result struct {
	Kind Kind
	Err  error
	// Status is the upstream HTTP status for KindStatus results.
	Status int
	// Op is the loader operation that produced the result.
	Op string

	Page      *character.Page
	Character *character.Character
}

// OK reports whether the call dispatched data.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Message is a short, user-facing description of a failure. List loads
// talk about pages, everything else about character ids.
func (r Result) Message() string {
	list := r.Op == OpCharacters || r.Op == OpCharactersPage
	switch r.Kind {
	case KindOK:
		return ""
	case KindInvalid:
		if list {
			return "That is not a valid page number."
		}
		return "That is not a valid character id."
	case KindStatus:
		if r.Status == 404 {
			if list {
				return "That page of characters does not exist."
			}
			return "No character with that id exists."
		}
		return fmt.Sprintf("The character API answered with status %d.", r.Status)
	case KindDecode:
		return "The character API sent a response we could not read."
	default:
		return "The character API could not be reached."
	}
}

// classify maps a source error onto a Result.
func classify(err error) Result {
	if err == nil {
		return Result{Kind: KindOK}
	}

	var se *rickmorty.StatusError
	switch {
	case errors.Is(err, rickmorty.ErrInvalidID):
		return Result{Kind: KindInvalid, Err: err}
	case errors.As(err, &se):
		return Result{Kind: KindStatus, Err: err, Status: se.Code}
	case errors.Is(err, rickmorty.ErrDecode):
		return Result{Kind: KindDecode, Err: err}
	default:
		return Result{Kind: KindTransport, Err: err}
	}
}
