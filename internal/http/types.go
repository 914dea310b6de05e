package http

import (
	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/telemetry"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Service   string                  `json:"service"`
	Version   string                  `json:"version,omitempty"`
	Telemetry *telemetry.HealthStatus `json:"telemetry,omitempty"`
}

// ResultResponse describes a loader outcome.
type ResultResponse struct {
	Kind    wiki.Kind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

// UIResponse is the response body for GET /api/v1/ui.
type UIResponse struct {
	Loading  bool `json:"loading"`
	InFlight int  `json:"in_flight"`
}

// CharactersResponse is the response body for GET /api/v1/characters.
type CharactersResponse struct {
	Result     ResultResponse        `json:"result"`
	Characters []character.Character `json:"characters"`
	Info       character.PageInfo    `json:"info"`
	UI         UIResponse            `json:"ui"`
}

// CharacterResponse is the response body for GET /api/v1/characters/:id.
type CharacterResponse struct {
	Result    ResultResponse       `json:"result"`
	Character *character.Character `json:"character,omitempty"`
}

// FavouritesResponse is the response body for the favourites endpoints.
type FavouritesResponse struct {
	IDs        []int                 `json:"ids"`
	Characters []character.Character `json:"characters,omitempty"`
	Results    []ResultResponse      `json:"results,omitempty"`
}

func newResultResponse(r wiki.Result) ResultResponse {
	resp := ResultResponse{Kind: r.Kind, Status: r.Status, Message: r.Message()}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}
