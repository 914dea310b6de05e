package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Field keys shared by the client, loader and HTTP layers.
const (
	KeyOperation   = "operation"
	KeyKind        = "kind"
	KeyPage        = "page"
	KeyCharacterID = "character.id"
	KeyURL         = "url"
	KeyStatus      = "status"
)

// Operation names the loader operation an entry belongs to.
func Operation(op string) zap.Field {
	return zap.String(KeyOperation, op)
}

// Kind records a result classification by name.
func Kind(k fmt.Stringer) zap.Field {
	return zap.Stringer(KeyKind, k)
}

func Page(n int) zap.Field {
	return zap.Int(KeyPage, n)
}

func CharacterID(id int) zap.Field {
	return zap.Int(KeyCharacterID, id)
}

// URL records an upstream URL.
func URL(u string) zap.Field {
	return zap.String(KeyURL, u)
}

// Status records an HTTP status code.
func Status(code int) zap.Field {
	return zap.Int(KeyStatus, code)
}
