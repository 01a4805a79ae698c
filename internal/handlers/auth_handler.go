package handlers

import (
	"context"
	"errors"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthHandler exposes the principal behind a bearer token. Tokens are issued elsewhere.
type AuthHandler struct {
	userRepo userLookup
}

func NewAuthHandler(userRepo userLookup) *AuthHandler {
	return &AuthHandler{userRepo: userRepo}
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	role := principalRole(c)
	if role == "" {
		return unauthorized(c)
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(fiber.Map{"user": user})
}
