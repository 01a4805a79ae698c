package database

import (
	"context"
	"fmt"

	"github.com/AnnaShafeeva/hotel-diplom/internal/config"
	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/pkg/utils"
	"github.com/sirupsen/logrus"
)

type userUpserter interface {
	UpsertByEmail(ctx context.Context, user *models.User) error
}

// SeedDefaultUsers makes sure every configured default account exists with its
// configured password and role.
func SeedDefaultUsers(ctx context.Context, users userUpserter, defaults []config.DefaultUser, logger logrus.FieldLogger) error {
	for _, account := range defaults {
		hash, err := utils.HashPassword(account.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", account.Email, err)
		}

		user := &models.User{
			Email:        account.Email,
			PasswordHash: hash,
			Name:         account.Name,
			Role:         account.Role,
		}
		if err := users.UpsertByEmail(ctx, user); err != nil {
			return fmt.Errorf("seed %s user %s: %w", account.Role, account.Email, err)
		}

		logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("default user ready")
	}
	return nil
}
