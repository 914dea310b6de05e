package http

import (
	"net/http"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
	"github.com/labstack/echo/v4"
)

// handleAPICharacters runs the list loader and returns the page it loaded.
func (s *Server) handleAPICharacters(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}

	res := s.loadCharacters(c, page)
	resp := CharactersResponse{
		Result:     newResultResponse(res),
		Characters: []character.Character{},
		UI:         s.uiResponse(),
	}
	if res.Page != nil {
		resp.Characters = res.Page.Results
		resp.Info = res.Page.Info
	}
	return c.JSON(statusFor(res), resp)
}

// handleAPICharacter runs the single-character loader.
func (s *Server) handleAPICharacter(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	res := s.loader.GetSingleCharacter(c.Request().Context(), id)
	return c.JSON(statusFor(res), CharacterResponse{
		Result:    newResultResponse(res),
		Character: res.Character,
	})
}

func (s *Server) handleAPIUI(c echo.Context) error {
	return c.JSON(http.StatusOK, s.uiResponse())
}

// handleAPIFavourites loads and returns every favourite.
func (s *Server) handleAPIFavourites(c echo.Context) error {
	ids := s.stores.Favourites.State().IDs
	results := s.loader.GetFavourites(c.Request().Context(), ids)

	resp := FavouritesResponse{
		IDs:        nonNil(ids),
		Characters: loadedCharacters(results),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, newResultResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAPIAddFavourite(c echo.Context) error {
	return s.updateFavourites(c, store.AddFavourite)
}

func (s *Server) handleAPIRemoveFavourite(c echo.Context) error {
	return s.updateFavourites(c, store.RemoveFavourite)
}

func (s *Server) updateFavourites(c echo.Context, action func(int) store.Action) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "character id must be positive")
	}
	s.stores.Favourites.Dispatch(action(id))
	return c.JSON(http.StatusOK, FavouritesResponse{IDs: nonNil(s.stores.Favourites.State().IDs)})
}

func (s *Server) uiResponse() UIResponse {
	ui := s.stores.UI.State()
	return UIResponse{Loading: ui.IsLoading(), InFlight: ui.InFlight}
}

// statusFor maps a loader result onto the API response status.
func statusFor(res wiki.Result) int {
	switch res.Kind {
	case wiki.KindOK:
		return http.StatusOK
	case wiki.KindInvalid:
		return http.StatusBadRequest
	case wiki.KindStatus:
		if res.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
