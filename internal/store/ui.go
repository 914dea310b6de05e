package store

// SetLoadingType toggles the loading flag.
const SetLoadingType ActionType = "ui/setLoading"

// UIState is the UI slice.
//
// Loading is tracked as a count of in-flight requests so overlapping
// requests cannot clear the flag while another is still pending.
type UIState struct {
	InFlight int `json:"in_flight"`
}

// IsLoading reports whether any request is in flight.
func (s UIState) IsLoading() bool {
	return s.InFlight > 0
}

// SetLoading marks the start (true) or end (false) of a request.
func SetLoading(loading bool) Action {
	return Action{Type: SetLoadingType, Payload: loading}
}

// ReduceUI is the UI reducer.
func ReduceUI(state UIState, action Action) UIState {
	if action.Type != SetLoadingType {
		return state
	}
	loading, ok := action.Payload.(bool)
	if !ok {
		return state
	}
	if loading {
		state.InFlight++
	} else if state.InFlight > 0 {
		state.InFlight--
	}
	return state
}
