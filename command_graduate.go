package gradauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// GraduateTokenMessage requests graduation from a provider-signed identity
// token, for dispatch through a command bus.
type GraduateTokenMessage struct {
	Token string `json:"token"`
}

func (e GraduateTokenMessage) Type() string { return "auth.graduate.token" }

// GraduateSessionMessage requests graduation of a stored lightweight OAuth
// session.
type GraduateSessionMessage struct {
	SessionID string `json:"session_id"`
}

func (e GraduateSessionMessage) Type() string { return "auth.graduate.session" }

// GraduateTokenHandler executes GraduateTokenMessage.
type GraduateTokenHandler struct {
	Graduator *Graduator
	OnResult  func(ctx context.Context, result *GraduationResult)
}

func (h *GraduateTokenHandler) Execute(ctx context.Context, event GraduateTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during token graduation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *GraduateTokenHandler) execute(ctx context.Context, event GraduateTokenMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	result, err := h.Graduator.GraduateFromToken(ctx, event.Token)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "token graduation failed")
	}

	if h.OnResult != nil {
		h.OnResult(ctx, result)
	}

	return nil
}

// GraduateSessionHandler executes GraduateSessionMessage.
type GraduateSessionHandler struct {
	Graduator *Graduator
	OnResult  func(ctx context.Context, result *GraduationResult)
}

func (h *GraduateSessionHandler) Execute(ctx context.Context, event GraduateSessionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during session graduation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *GraduateSessionHandler) execute(ctx context.Context, event GraduateSessionMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	result, err := h.Graduator.GraduateFromSession(ctx, event.SessionID)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session graduation failed")
	}

	if h.OnResult != nil {
		h.OnResult(ctx, result)
	}

	return nil
}
