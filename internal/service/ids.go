package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// generateID produces an identifier that does not collide with an existing
// row, regenerating on the (unlikely) collision.
func generateID(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for {
		id := uuid.NewString()
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
}
