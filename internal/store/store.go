// Package store provides dispatch-driven state containers for the wiki.
//
// Each Store holds one slice of state and changes only through Dispatch.
// Transitions are pure reducers mapping (state, action) to a new state;
// reducers never mutate the previous state, so values returned by State
// stay valid after later dispatches.
//
// Stores are created explicitly (see NewStores) and passed to the loader
// and HTTP handlers. There is no package-level store.
package store

import "sync"

// ActionType tags an action.
type ActionType string

// Action describes a state transition.
type Action struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload,omitempty"`
}

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(action Action)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(action Action)

// Dispatch calls f(action).
func (f DispatchFunc) Dispatch(action Action) {
	f(action)
}

// Reducer maps the current state and an action to the next state.
// Unknown actions must return state unchanged.
type Reducer[S any] func(state S, action Action) S

// Store is a mutex-guarded state container.
type Store[S any] struct {
	mu     sync.RWMutex
	state  S
	reduce Reducer[S]

	subMu  sync.Mutex
	subs   map[int]func(S)
	nextID int
}

// New creates a store with an initial state and reducer.
func New[S any](initial S, reduce Reducer[S]) *Store[S] {
	return &Store[S]{
		state:  initial,
		reduce: reduce,
		subs:   make(map[int]func(S)),
	}
}

// Dispatch applies the action synchronously and notifies subscribers
// with the resulting state.
func (s *Store[S]) Dispatch(action Action) {
	s.mu.Lock()
	s.state = s.reduce(s.state, action)
	next := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch.
// The returned function removes the subscription.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Stores groups the wiki's state slices.
type Stores struct {
	Characters *Store[CharactersState]
	UI         *Store[UIState]
	Favourites *Store[FavouritesState]
}

// NewStores creates empty stores.
func NewStores() *Stores {
	return &Stores{
		Characters: New(CharactersState{}, ReduceCharacters),
		UI:         New(UIState{}, ReduceUI),
		Favourites: New(FavouritesState{}, ReduceFavourites),
	}
}
