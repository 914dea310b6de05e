package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
)

// browseTimeout bounds each request the browser makes.
const browseTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browseCmd pages through characters in a terminal UI
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse characters interactively",
	Long: `Page through the character list in a terminal UI.

Keys:
  ↑/k ↓/j   move the selection
  →/n ←/p   next or previous page
  f         toggle the selected character as a favourite
  r         reload the current page
  q         quit

Examples:
  wikictl browse
  wikictl browse --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(newBrowser(serverURL),
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Favourite key.Binding
	Reload    key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Favourite, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Next, k.Prev},
		{k.Favourite, k.Reload, k.Quit},
	}
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Next:      key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
	Prev:      key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "prev page")),
	Favourite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favourite")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Message types
type pageMsg struct {
	page int
	resp wikihttp.CharactersResponse
}
type favouritesMsg []int
type errMsg error

// browser is the bubbletea model behind wikictl browse.
type browser struct {
	server string

	page       int
	resp       wikihttp.CharactersResponse
	favourites map[int]bool
	cursor     int

	loading  bool
	err      error
	quitting bool

	spinner spinner.Model
	help    help.Model
}

func newBrowser(server string) browser {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle

	return browser{
		server:     server,
		page:       1,
		favourites: map[int]bool{},
		loading:    true,
		spinner:    s,
		help:       help.New(),
	}
}

func (m browser) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchPage(m.server, m.page),
		fetchFavourites(m.server),
	)
}

// fetchPage loads one list page through the server.
func fetchPage(server string, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), browseTimeout)
		defer cancel()

		path := "/api/v1/characters?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
		var resp wikihttp.CharactersResponse
		if err := doJSON(ctx, server, http.MethodGet, path, &resp); err != nil {
			return errMsg(err)
		}
		return pageMsg{page: page, resp: resp}
	}
}

func fetchFavourites(server string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), browseTimeout)
		defer cancel()

		var resp wikihttp.FavouritesResponse
		if err := doJSON(ctx, server, http.MethodGet, "/api/v1/favourites", &resp); err != nil {
			return errMsg(err)
		}
		return favouritesMsg(resp.IDs)
	}
}

// toggleFavourite adds id, or removes it when it is already a favourite.
func toggleFavourite(server string, id int, remove bool) tea.Cmd {
	method := http.MethodPut
	if remove {
		method = http.MethodDelete
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), browseTimeout)
		defer cancel()

		var resp wikihttp.FavouritesResponse
		if err := doJSON(ctx, server, method, "/api/v1/favourites/"+strconv.Itoa(id), &resp); err != nil {
			return errMsg(err)
		}
		return favouritesMsg(resp.IDs)
	}
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.resp.Characters)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Next):
			if !m.loading && m.resp.Info.HasNext() {
				return m.load(m.page + 1)
			}
		case key.Matches(msg, keys.Prev):
			if !m.loading && m.page > 1 {
				return m.load(m.page - 1)
			}
		case key.Matches(msg, keys.Reload):
			if !m.loading {
				return m.load(m.page)
			}
		case key.Matches(msg, keys.Favourite):
			if c, ok := m.selected(); ok {
				return m, toggleFavourite(m.server, c.ID, m.favourites[c.ID])
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case pageMsg:
		m.loading = false
		m.err = nil
		m.page = msg.page
		m.resp = msg.resp
		m.cursor = 0
		return m, nil

	case favouritesMsg:
		m.favourites = make(map[int]bool, len(msg))
		for _, id := range msg {
			m.favourites[id] = true
		}
		return m, nil

	case errMsg:
		m.loading = false
		m.err = error(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m browser) load(page int) (tea.Model, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, fetchPage(m.server, page))
}

func (m browser) selected() (character.Character, bool) {
	if m.cursor < 0 || m.cursor >= len(m.resp.Characters) {
		return character.Character{}, false
	}
	return m.resp.Characters[m.cursor], true
}

func (m browser) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " loading...")
		b.WriteString("\n\n")
	}

	for i, c := range m.resp.Characters {
		cursor := "  "
		if i == m.cursor {
			cursor = labelStyle.Render("▸ ")
		}
		star := " "
		if m.favourites[c.ID] {
			star = aliveStyle.Render("★")
		}
		b.WriteString(cursor + star + " " + nameStyle.Render(c.Name) + " " + dimStyle.Render("#"+strconv.Itoa(c.ID)))
		b.WriteString("\n")
	}

	if c, ok := m.selected(); ok {
		b.WriteString("\n")
		b.WriteString(renderDetail(c))
		b.WriteString("\n")
	}

	if info := m.resp.Info; info.Pages > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("page " + strconv.Itoa(m.page) + " of " + strconv.Itoa(info.Pages)))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
