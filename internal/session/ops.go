package session

import (
	"context"

	"nightfall/internal/game"
)

// hostOnly guards a transition so only the current host may run it
func hostOnly(actorID string, fn Transition) Transition {
	return func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		if !s.IsHost(actorID) {
			return nil, ErrNotHost
		}
		return fn(e, s)
	}
}

// Start deals the roles and begins the first night
func (r *Room) Start(ctx context.Context, actorID string) (*game.RoomState, error) {
	return r.Do(ctx, hostOnly(actorID, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.StartGame(s)
	}))
}

// AddBot seats a bot
func (r *Room) AddBot(ctx context.Context, actorID string) (*game.RoomState, error) {
	return r.Do(ctx, hostOnly(actorID, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		next, _, err := e.AddBot(s)
		return next, err
	}))
}

// SetDistribution replaces the role distribution
func (r *Room) SetDistribution(ctx context.Context, actorID string, d game.RoleDistribution) (*game.RoomState, error) {
	return r.Do(ctx, hostOnly(actorID, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.SetDistribution(s, d)
	}))
}

// ApplyTemplate resets the distribution to the default for the roster size
func (r *Room) ApplyTemplate(ctx context.Context, actorID string) (*game.RoomState, error) {
	return r.Do(ctx, hostOnly(actorID, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.ApplyTemplate(s)
	}))
}

// Rematch sends a finished room back to setup
func (r *Room) Rematch(ctx context.Context, actorID string) (*game.RoomState, error) {
	return r.Do(ctx, hostOnly(actorID, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.RequestRematch(s)
	}))
}

// Act submits a night target or a vote
func (r *Room) Act(ctx context.Context, actorID, targetID string) (*game.RoomState, error) {
	return r.Do(ctx, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.ApplyAction(s, actorID, targetID)
	})
}

// ToggleSkip flips the actor's agreement to end the discussion
func (r *Room) ToggleSkip(ctx context.Context, actorID string) (*game.RoomState, error) {
	return r.Do(ctx, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.ToggleSkip(s, actorID)
	})
}

// Post appends a chat message
func (r *Room) Post(ctx context.Context, actorID string, channel game.Channel, text string) (*game.RoomState, error) {
	return r.Do(ctx, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.PostMessage(s, actorID, channel, text)
	})
}

// View returns the latest snapshot as the viewer may see it
func (r *Room) View(viewerID string) *game.RoomState {
	return game.View(r.Snapshot(), viewerID, r.engine.Catalog())
}
