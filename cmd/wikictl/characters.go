package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
)

var (
	// charactersPage selects the list page; 0 asks for the default page
	charactersPage int
)

func init() {
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(characterCmd)

	charactersCmd.Flags().IntVar(&charactersPage, "page", 0, "page of the character list (default first page)")
}

// charactersCmd lists one page of characters
var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List characters",
	Long: `Load a page of characters through the server and print them as cards.

Examples:
  # First page
  wikictl characters

  # A later page
  wikictl characters --page 3`,
	Args: cobra.NoArgs,
	RunE: runCharacters,
}

// characterCmd shows a single character
var characterCmd = &cobra.Command{
	Use:   "character <id>",
	Short: "Show a single character",
	Long: `Load one character by id and print its card.

Examples:
  wikictl character 1`,
	Args: cobra.ExactArgs(1),
	RunE: runCharacter,
}

func runCharacters(cmd *cobra.Command, args []string) error {
	if charactersPage < 0 {
		return fmt.Errorf("page must not be negative")
	}

	path := "/api/v1/characters"
	if charactersPage > 0 {
		path += "?" + url.Values{"page": {strconv.Itoa(charactersPage)}}.Encode()
	}

	var resp wikihttp.CharactersResponse
	if err := doJSON(cmd.Context(), serverURL, http.MethodGet, path, &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderCharacters(resp))
	return nil
}

func runCharacter(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var resp wikihttp.CharacterResponse
	if err := doJSON(cmd.Context(), serverURL, http.MethodGet, "/api/v1/characters/"+strconv.Itoa(id), &resp); err != nil {
		return err
	}
	if resp.Character == nil {
		return fmt.Errorf("character %d not returned by server", id)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderDetail(*resp.Character))
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid character id %q: must be a positive integer", s)
	}
	return id, nil
}
