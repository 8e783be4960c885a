package nakama

import (
	"errors"

	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	errNoUser     = runtime.NewError("no user ID in context", codeUnauthenticated)
	errBadPayload = runtime.NewError("malformed payload", codeInvalidArgument)
	errNoGameID   = runtime.NewError("game_id is required", codeInvalidArgument)
)

// toRuntimeError maps rule and store errors to status codes clients can act on.
func toRuntimeError(err error) error {
	var rErr *runtime.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rErr):
		return err
	case errors.Is(err, domain.ErrConflict):
		return runtime.NewError(err.Error(), codeAborted)
	case errors.Is(err, ports.ErrGameNotFound):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotInGame):
		return runtime.NewError(err.Error(), codePermissionDenied)
	case errors.Is(err, domain.ErrWrongTurn), errors.Is(err, domain.ErrWrongStep), errors.Is(err, domain.ErrEmptyPile):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	case errors.Is(err, domain.ErrInvalidMeld), errors.Is(err, domain.ErrMissingTile), errors.Is(err, domain.ErrConfiguration):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	default:
		return runtime.NewError("internal error", codeInternal)
	}
}
