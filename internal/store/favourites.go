package store

import "slices"

// Favourites action types.
const (
	AddFavouriteType    ActionType = "favourites/add"
	RemoveFavouriteType ActionType = "favourites/remove"
)

// FavouritesState holds favourite character ids in insertion order.
type FavouritesState struct {
	IDs []int `json:"ids"`
}

// Contains reports whether id is a favourite.
func (s FavouritesState) Contains(id int) bool {
	return slices.Contains(s.IDs, id)
}

// AddFavourite marks a character as favourite.
func AddFavourite(id int) Action {
	return Action{Type: AddFavouriteType, Payload: id}
}

// RemoveFavourite unmarks a character.
func RemoveFavourite(id int) Action {
	return Action{Type: RemoveFavouriteType, Payload: id}
}

// ReduceFavourites is the favourites reducer. Adding is idempotent and
// only positive ids are accepted.
func ReduceFavourites(state FavouritesState, action Action) FavouritesState {
	id, ok := action.Payload.(int)
	if !ok || id <= 0 {
		return state
	}

	switch action.Type {
	case AddFavouriteType:
		if state.Contains(id) {
			return state
		}
		next := make([]int, 0, len(state.IDs)+1)
		next = append(next, state.IDs...)
		state.IDs = append(next, id)
	case RemoveFavouriteType:
		idx := slices.Index(state.IDs, id)
		if idx < 0 {
			return state
		}
		state.IDs = slices.Concat(state.IDs[:idx], state.IDs[idx+1:])
	}
	return state
}
