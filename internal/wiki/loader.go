// Package wiki loads characters from the upstream API into the stores.
//
// Every operation follows the same shape: dispatch SetLoading(true), call
// the upstream, dispatch the data action only on success, then dispatch
// SetLoading(false) on every path. Failures never produce a store action;
// they are reported through the returned Result.
package wiki

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/logging"
	"github.com/fyrsmithlabs/rmwiki/internal/rickmorty"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFanOut bounds concurrent upstream calls in GetFavourites.
const DefaultFanOut = 4

// CharacterSource fetches characters. *rickmorty.Client implements it.
type CharacterSource interface {
	ListCharacters(ctx context.Context, page int) (character.Page, error)
	GetCharacter(ctx context.Context, id int) (character.Character, error)
}

var _ CharacterSource = (*rickmorty.Client)(nil)

// Option customizes a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *logging.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMetrics enables Prometheus outcome counters.
func WithMetrics(m *Metrics) Option {
	return func(ld *Loader) {
		ld.metrics = m
	}
}

// WithFanOut bounds concurrent fetches in GetFavourites. n <= 0 keeps the default.
func WithFanOut(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.fanOut = n
		}
	}
}

// Loader bridges page handlers and the upstream API.
type Loader struct {
	source     CharacterSource
	characters store.Dispatcher
	ui         store.Dispatcher
	logger     *logging.Logger
	metrics    *Metrics
	fanOut     int
}

// New creates a loader that dispatches character actions to characters and
// loading actions to ui.
func New(source CharacterSource, characters, ui store.Dispatcher, opts ...Option) *Loader {
	ld := &Loader{
		source:     source,
		characters: characters,
		ui:         ui,
		logger:     logging.NewNop(),
		fanOut:     DefaultFanOut,
	}
	for _, opt := range opts {
		opt(ld)
	}
	ld.logger = ld.logger.Named("wiki")
	return ld
}

// GetCharactersAPI loads the first page of the character list.
func (l *Loader) GetCharactersAPI(ctx context.Context) Result {
	return l.loadPage(ctx, OpCharacters, 0)
}

// GetCharactersPage loads one page of the character list. Pages below 1
// are rejected without a request.
func (l *Loader) GetCharactersPage(ctx context.Context, page int) Result {
	if page < 1 {
		return l.run(ctx, OpCharactersPage, func(context.Context) Result {
			return Result{Kind: KindInvalid, Err: fmt.Errorf("page %d must be >= 1", page)}
		})
	}
	return l.loadPage(ctx, OpCharactersPage, page)
}

func (l *Loader) loadPage(ctx context.Context, op string, page int) Result {
	return l.run(ctx, op, func(ctx context.Context) Result {
		p, err := l.source.ListCharacters(ctx, page)
		if err != nil {
			return classify(err)
		}
		l.characters.Dispatch(store.LoadCharacters(p.Results))
		l.characters.Dispatch(store.SetPageInfo(p.Info))
		l.logger.Debug(ctx, "characters loaded",
			logging.Page(p.Info.Page),
			zap.Int("count", len(p.Results)),
		)
		return Result{Kind: KindOK, Page: &p}
	})
}

// GetSingleCharacter loads one character by id. Non-positive ids fail with
// KindInvalid and never reach the upstream.
func (l *Loader) GetSingleCharacter(ctx context.Context, id int) Result {
	return l.run(ctx, OpCharacter, func(ctx context.Context) Result {
		if id <= 0 {
			return Result{Kind: KindInvalid, Err: fmt.Errorf("get character %d: %w", id, rickmorty.ErrInvalidID)}
		}
		c, err := l.source.GetCharacter(ctx, id)
		if err != nil {
			return classify(err)
		}
		l.characters.Dispatch(store.LoadCharacter(c))
		l.logger.Debug(ctx, "character loaded", logging.CharacterID(c.ID))
		return Result{Kind: KindOK, Character: &c}
	})
}

// GetFavourites loads every id concurrently through GetSingleCharacter.
// Results are returned in the order of ids.
func (l *Loader) GetFavourites(ctx context.Context, ids []int) []Result {
	results := make([]Result, len(ids))

	var g errgroup.Group
	g.SetLimit(l.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = l.GetSingleCharacter(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// run wraps fn with the loading toggle, outcome logging and panic recovery.
func (l *Loader) run(ctx context.Context, op string, fn func(context.Context) Result) (res Result) {
	l.ui.Dispatch(store.SetLoading(true))
	if l.metrics != nil {
		l.metrics.InFlight.Inc()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Kind: KindTransport, Err: fmt.Errorf("%s: recovered panic: %v", op, r)}
			l.logger.Error(ctx, "loader panic", logging.Operation(op), zap.Any("panic", r))
		}
		res.Op = op
		if l.metrics != nil {
			l.metrics.InFlight.Dec()
			l.metrics.record(op, res.Kind)
		}
		if !res.OK() {
			l.logger.Warn(ctx, "load failed",
				logging.Operation(op),
				logging.Kind(res.Kind),
				zap.Error(res.Err),
			)
		}
		l.ui.Dispatch(store.SetLoading(false))
	}()

	return fn(ctx)
}
