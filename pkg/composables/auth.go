package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/constants"
)

var (
	ErrNoTenantID  = errors.New("tenant id not found in context")
	ErrNoAuthState = errors.New("auth state not found in context")
)

// WithAuthState stores state and its tenant in ctx.
func WithAuthState(ctx context.Context, state authn.AuthState) context.Context {
	ctx = context.WithValue(ctx, constants.AuthStateKey, state)
	return WithTenantID(ctx, state.TenantID)
}

func UseAuthState(ctx context.Context) (authn.AuthState, error) {
	state, ok := ctx.Value(constants.AuthStateKey).(authn.AuthState)
	if !ok {
		return authn.AuthState{}, ErrNoAuthState
	}
	return state, nil
}

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}
