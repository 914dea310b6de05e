package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
)

var (
	// Header style - bright cyan background, bold black text
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	aliveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const title = "rick and morty - wiki"

// statusText renders a status with the same buckets as the web cards.
func statusText(c character.Character) string {
	status := c.Status
	if status == "" {
		status = character.StatusUnknown
	}
	switch c.StatusClass() {
	case "status--alive":
		return aliveStyle.Render("● " + status)
	case "status--dead":
		return deadStyle.Render("● " + status)
	default:
		return unknownStyle.Render("● " + status)
	}
}

func renderCard(c character.Character) string {
	lines := []string{
		nameStyle.Render(c.Name) + " " + dimStyle.Render("#"+strconv.Itoa(c.ID)),
		statusText(c) + dimStyle.Render(" - ") + c.Species,
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderDetail(c character.Character) string {
	field := func(label, value string) string {
		if value == "" {
			value = dimStyle.Render("unknown")
		}
		return labelStyle.Render(fmt.Sprintf("%-9s", label)) + " " + value
	}

	lines := []string{
		nameStyle.Render(c.Name) + " " + dimStyle.Render("#"+strconv.Itoa(c.ID)),
		field("status", statusText(c)),
		field("species", c.Species),
		field("gender", c.Gender),
		field("origin", c.Origin.Name),
		field("location", c.Location.Name),
		field("image", c.Image),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderCards(list []character.Character) string {
	cards := make([]string, 0, len(list))
	for _, c := range list {
		cards = append(cards, renderCard(c))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderCharacters(resp wikihttp.CharactersResponse) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if len(resp.Characters) == 0 {
		b.WriteString(dimStyle.Render("no characters"))
	} else {
		b.WriteString(renderCards(resp.Characters))
	}

	if resp.Info.Pages > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("page %d of %d (%d characters)",
			resp.Info.Page, resp.Info.Pages, resp.Info.Count)))
	}
	return b.String()
}

func renderFavourites(resp wikihttp.FavouritesResponse) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title + " | favourites"))
	b.WriteString("\n")

	if len(resp.IDs) == 0 {
		b.WriteString(dimStyle.Render("no favourites yet"))
		return b.String()
	}

	b.WriteString(renderCards(resp.Characters))
	for _, r := range resp.Results {
		if r.Message != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render("✗ " + r.Message))
		}
	}
	return b.String()
}

func renderFavouriteIDs(ids []int) string {
	if len(ids) == 0 {
		return "favourites: " + dimStyle.Render("none")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "favourites: " + strings.Join(parts, ", ")
}

func renderHealth(resp wikihttp.HealthResponse, url string) string {
	status := aliveStyle.Render("● " + resp.Status)
	if resp.Status != "ok" {
		status = errorStyle.Render("● " + resp.Status)
	}

	lines := []string{
		labelStyle.Render("Server Status:") + " " + status,
		labelStyle.Render("Server URL:") + " " + url,
	}
	if resp.Version != "" {
		lines = append(lines, labelStyle.Render("Version:")+" "+resp.Version)
	}
	if t := resp.Telemetry; t != nil {
		state := "healthy"
		if t.Degraded {
			state = "degraded"
			if t.Reason != "" {
				state += " (" + t.Reason + ")"
			}
		}
		lines = append(lines, labelStyle.Render("Telemetry:")+" "+state)
	}
	return strings.Join(lines, "\n")
}
