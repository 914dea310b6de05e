package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page templates. Each is parsed together with the shared header shell and card.
const (
	pageCharacters = "characters.html"
	pageCharacter  = "character.html"
	pageFavourites = "favourites.html"
	pageCreativity = "creativity.html"
)

// views implements echo.Renderer over the embedded templates.
type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageCharacters, pageCharacter, pageFavourites, pageCreativity} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/card.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", page, err)
		}
		v.pages[page] = t
	}
	return v, nil
}

// Render executes the named page inside the header shell.
func (v *views) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// cardView is a character as rendered on a card.
type cardView struct {
	character.Character
	Favourite bool
}

// pageView is the data passed to every page template.
type pageView struct {
	Title   string
	Nav     string
	Banner  string
	Loading bool

	Cards     []cardView
	Character *cardView

	Info     character.PageInfo
	NextPage int
	PrevPage int
}

func newCards(list []character.Character, favourites map[int]bool) []cardView {
	cards := make([]cardView, 0, len(list))
	for _, c := range list {
		cards = append(cards, cardView{Character: c, Favourite: favourites[c.ID]})
	}
	return cards
}
