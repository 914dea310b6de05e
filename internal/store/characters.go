package store

import "github.com/fyrsmithlabs/rmwiki/internal/character"

// Characters action types.
const (
	LoadCharactersType ActionType = "characters/load"
	LoadCharacterType  ActionType = "characters/loadOne"
	SetPageInfoType    ActionType = "characters/setPageInfo"
)

// CharactersState is the characters slice.
type CharactersState struct {
	Characters []character.Character `json:"characters"`
	Info       character.PageInfo    `json:"info"`
}

// Find returns the character with the given id.
func (s CharactersState) Find(id int) (character.Character, bool) {
	for _, c := range s.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return character.Character{}, false
}

// LoadCharacters replaces the collection with list.
func LoadCharacters(list []character.Character) Action {
	return Action{Type: LoadCharactersType, Payload: list}
}

// LoadCharacter adds or replaces a single character.
func LoadCharacter(c character.Character) Action {
	return Action{Type: LoadCharacterType, Payload: c}
}

// SetPageInfo records pagination for the loaded collection.
func SetPageInfo(info character.PageInfo) Action {
	return Action{Type: SetPageInfoType, Payload: info}
}

// ReduceCharacters is the characters reducer.
func ReduceCharacters(state CharactersState, action Action) CharactersState {
	switch action.Type {
	case LoadCharactersType:
		list, ok := action.Payload.([]character.Character)
		if !ok {
			return state
		}
		state.Characters = append([]character.Character(nil), list...)
		return state

	case LoadCharacterType:
		c, ok := action.Payload.(character.Character)
		if !ok {
			return state
		}
		next := make([]character.Character, 0, len(state.Characters)+1)
		replaced := false
		for _, existing := range state.Characters {
			if existing.ID == c.ID {
				next = append(next, c)
				replaced = true
				continue
			}
			next = append(next, existing)
		}
		if !replaced {
			next = append(next, c)
		}
		state.Characters = next
		return state

	case SetPageInfoType:
		info, ok := action.Payload.(character.PageInfo)
		if !ok {
			return state
		}
		state.Info = info
		return state
	}
	return state
}
