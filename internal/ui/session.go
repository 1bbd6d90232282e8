// Package ui serves the single-page recipe generator and holds the per-visitor
// presentation state.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "github.com/cortexcompose/compose/internal/errors"
	"github.com/cortexcompose/compose/internal/services/recipe"
)

const (
	// ServiceErrorPrefix precedes the service message in the error banner.
	ServiceErrorPrefix = "Failed to generate recipes: "
	// UnknownErrorMessage is shown for failures that carry no usable message.
	UnknownErrorMessage = "An unknown error occurred."
)

// Generator runs one generation cycle.
type Generator interface {
	Generate(ctx context.Context, ingredients string) ([]recipe.Recipe, error)
}

// State is what the page renders.
type State struct {
	IngredientText string
	IsLoading      bool
	ErrorMessage   string
	Recipes        []recipe.Recipe
}

// Session holds one visitor's state. A new submission cancels the cycle that
// is still running and that cycle's outcome is dropped.
type Session struct {
	gen Generator

	mu       sync.Mutex
	state    State
	cycle    uint64
	cancel   context.CancelFunc
	lastSeen time.Time
}

func NewSession(gen Generator) *Session {
	return &Session{gen: gen, lastSeen: time.Now()}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if s.state.Recipes != nil {
		st.Recipes = append([]recipe.Recipe(nil), s.state.Recipes...)
	}
	return st
}

// Submit starts a generation cycle for text. The returned channel is closed
// once the cycle has settled. Empty input settles immediately with a guidance
// message and no call to the generator.
func (s *Session) Submit(ctx context.Context, text string) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if err := recipe.ValidateIngredients(text); err != nil {
		// A running cycle keeps its text; its outcome replaces the message.
		if !s.state.IsLoading {
			s.state.IngredientText = text
			s.state.Recipes = nil
		}
		s.state.ErrorMessage = ErrorMessage(err)
		s.mu.Unlock()
		close(done)
		return done
	}
	s.state.IngredientText = text

	if s.cancel != nil {
		s.cancel()
	}
	s.cycle++
	cycle := s.cycle
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.state.IsLoading = true
	s.state.ErrorMessage = ""
	s.state.Recipes = nil
	s.mu.Unlock()

	go func() {
		var (
			recipes []recipe.Recipe
			err     error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("generation panicked: %v", r)
				slog.ErrorContext(ctx, "Recipe generation panicked", "panic", r)
			}
			cancel()
			s.settle(cycle, recipes, err)
			close(done)
		}()

		recipes, err = s.gen.Generate(ctx, text)
	}()

	return done
}

// settle stores the outcome of cycle unless a newer cycle has started.
func (s *Session) settle(cycle uint64, recipes []recipe.Recipe, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cycle != s.cycle {
		return
	}
	s.cancel = nil
	s.state.IsLoading = false
	if err != nil {
		s.state.ErrorMessage = ErrorMessage(err)
		s.state.Recipes = nil
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	s.state.ErrorMessage = ""
	s.state.Recipes = recipes
}

// Close cancels any running cycle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// ErrorMessage maps a generation error to the banner text.
func ErrorMessage(err error) string {
	appErr, ok := apperrors.As(err)
	if !ok {
		return UnknownErrorMessage
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return appErr.Message
	case apperrors.ErrorTypeService:
		return ServiceErrorPrefix + strings.TrimSpace(appErr.Error())
	default:
		return UnknownErrorMessage
	}
}
