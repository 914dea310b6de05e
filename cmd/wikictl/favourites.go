package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
)

func init() {
	rootCmd.AddCommand(favouriteCmd)
	favouriteCmd.AddCommand(favouriteListCmd)
	favouriteCmd.AddCommand(favouriteAddCmd)
	favouriteCmd.AddCommand(favouriteRemoveCmd)
}

// favouriteCmd is the parent command for favourites
var favouriteCmd = &cobra.Command{
	Use:     "favourite",
	Aliases: []string{"fav"},
	Short:   "Manage favourite characters",
	Long: `Manage the server's favourite characters.

Examples:
  # Show favourites
  wikictl favourite list

  # Add and remove
  wikictl favourite add 1
  wikictl favourite remove 1`,
}

var favouriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show favourite characters",
	Args:  cobra.NoArgs,
	RunE:  runFavouriteList,
}

var favouriteAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a character to favourites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavourite(cmd, http.MethodPut, args[0])
	},
}

var favouriteRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a character from favourites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavourite(cmd, http.MethodDelete, args[0])
	},
}

func runFavouriteList(cmd *cobra.Command, args []string) error {
	var resp wikihttp.FavouritesResponse
	if err := doJSON(cmd.Context(), serverURL, http.MethodGet, "/api/v1/favourites", &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderFavourites(resp))
	return nil
}

func updateFavourite(cmd *cobra.Command, method, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	var resp wikihttp.FavouritesResponse
	if err := doJSON(cmd.Context(), serverURL, method, "/api/v1/favourites/"+strconv.Itoa(id), &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderFavouriteIDs(resp.IDs))
	return nil
}
