package testutil

import (
	"context"

	"github.com/motorlane/pipeline-api/internal/auth"
	"github.com/motorlane/pipeline-api/internal/domain"
)

// ContextWithUser returns a context authenticated as the given user
func ContextWithUser(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	})
}
