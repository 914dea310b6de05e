package rickmorty

import (
	"net/url"
	"strconv"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
)

// Wire shapes returned by the remote API. Only the fields the wiki renders
// survive the mapping into character.Character.

type apiPlace struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type apiCharacter struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   apiPlace `json:"origin"`
	Location apiPlace `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

type apiInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

type apiPage struct {
	Info    apiInfo        `json:"info"`
	Results []apiCharacter `json:"results"`
}

func (a apiCharacter) toCharacter() character.Character {
	return character.Character{
		ID:       a.ID,
		Name:     a.Name,
		Status:   a.Status,
		Species:  a.Species,
		Gender:   a.Gender,
		Origin:   character.Place{Name: a.Origin.Name},
		Location: character.Place{Name: a.Location.Name},
		Image:    a.Image,
	}
}

func (p apiPage) toPage(page int) character.Page {
	results := make([]character.Character, 0, len(p.Results))
	for _, r := range p.Results {
		results = append(results, r.toCharacter())
	}

	if page <= 0 {
		page = 1
	}
	return character.Page{
		Info: character.PageInfo{
			Count: p.Info.Count,
			Pages: p.Info.Pages,
			Page:  page,
			Next:  pageRef(p.Info.Next),
			Prev:  pageRef(p.Info.Prev),
		},
		Results: results,
	}
}

// pageRef reduces an upstream page URL to its page number so links stay
// on this server. An unparseable URL still counts as "present".
func pageRef(raw *string) string {
	if raw == nil || *raw == "" {
		return ""
	}
	u, err := url.Parse(*raw)
	if err != nil {
		return *raw
	}
	if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > 0 {
		return strconv.Itoa(n)
	}
	return *raw
}
