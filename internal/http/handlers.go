package http

import (
	"net/http"
	"strconv"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/characters")
}

// handleCharactersPage renders one page of character cards.
func (s *Server) handleCharactersPage(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}

	res := s.loadCharacters(c, page)

	view := s.newPageView("Characters", "characters", res)
	if p := res.Page; p != nil {
		view.Cards = newCards(p.Results, s.favouriteSet())
		view.Info = p.Info
		if p.Info.HasNext() {
			view.NextPage = p.Info.Page + 1
		}
		if p.Info.HasPrev() {
			view.PrevPage = p.Info.Page - 1
		}
	}
	return c.Render(http.StatusOK, pageCharacters, view)
}

// handleCharacterPage renders a single character.
func (s *Server) handleCharacterPage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	res := s.loader.GetSingleCharacter(c.Request().Context(), id)

	view := s.newPageView("Character", "characters", res)
	if ch := res.Character; ch != nil {
		view.Title = ch.Name
		view.Character = &cardView{Character: *ch, Favourite: s.favouriteSet()[id]}
	}
	return c.Render(http.StatusOK, pageCharacter, view)
}

// handleFavouritesPage renders every favourite character.
func (s *Server) handleFavouritesPage(c echo.Context) error {
	ids := s.stores.Favourites.State().IDs
	results := s.loader.GetFavourites(c.Request().Context(), ids)

	view := s.newPageView("Favourites", "favourites", firstFailure(results))
	view.Cards = newCards(loadedCharacters(results), s.favouriteSet())
	return c.Render(http.StatusOK, pageFavourites, view)
}

func (s *Server) handleAddFavouriteForm(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	s.stores.Favourites.Dispatch(store.AddFavourite(id))
	return c.Redirect(http.StatusSeeOther, "/favourites")
}

func (s *Server) handleRemoveFavouriteForm(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	s.stores.Favourites.Dispatch(store.RemoveFavourite(id))
	return c.Redirect(http.StatusSeeOther, "/favourites")
}

func (s *Server) handleCreativityZone(c echo.Context) error {
	return c.Render(http.StatusOK, pageCreativity, s.newPageView("Creativity Zone", "creativity", wiki.Result{}))
}

func (s *Server) newPageView(title, nav string, res wiki.Result) pageView {
	return pageView{
		Title:   title,
		Nav:     nav,
		Banner:  res.Message(),
		Loading: s.stores.UI.State().IsLoading(),
	}
}

// loadCharacters runs the list loader; page 0 means the default first page.
func (s *Server) loadCharacters(c echo.Context, page int) wiki.Result {
	if page == 0 {
		return s.loader.GetCharactersAPI(c.Request().Context())
	}
	return s.loader.GetCharactersPage(c.Request().Context(), page)
}

func (s *Server) favouriteSet() map[int]bool {
	ids := s.stores.Favourites.State().IDs
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// loadedCharacters collects the characters of successful results, in order.
func loadedCharacters(results []wiki.Result) []character.Character {
	out := make([]character.Character, 0, len(results))
	for _, r := range results {
		if r.Character != nil {
			out = append(out, *r.Character)
		}
	}
	return out
}

func firstFailure(results []wiki.Result) wiki.Result {
	for _, r := range results {
		if !r.OK() {
			return r
		}
	}
	return wiki.Result{}
}

// pageParam parses ?page. A missing value is 0.
func pageParam(c echo.Context) (int, error) {
	raw := c.QueryParam("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "page must be a positive integer")
	}
	return page, nil
}

func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "character id must be numeric")
	}
	return id, nil
}
