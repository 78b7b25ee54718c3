package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"otrabotki-service/internal/idgen"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// BootstrapAccount — учётные данные сидируемой служебной записи.
type BootstrapAccount struct {
	Login    string
	Password string
	FIO      string
}

// Bootstrap сидирует админа и оператора при первом запуске. Существующие
// логины не трогаются, чтобы не затирать сменённые пароли.
func Bootstrap(ctx context.Context, users repository.UserRepository, admin, operator BootstrapAccount, logger *zap.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		taken[existing[i].Login] = struct{}{}
	}

	seeded := 0
	for _, acc := range []struct {
		account BootstrapAccount
		role    string
	}{
		{admin, model.RoleAdmin},
		{operator, model.RoleOperator},
	} {
		if acc.account.Login == "" {
			continue
		}
		if _, ok := taken[acc.account.Login]; ok {
			continue
		}
		hash, err := HashPassword(acc.account.Password)
		if err != nil {
			return err
		}
		existing = append(existing, model.User{
			ID:       idgen.New("u"),
			Login:    acc.account.Login,
			Password: hash,
			Role:     acc.role,
			FIO:      acc.account.FIO,
		})
		seeded++
		logger.Info("Seeded service account",
			zap.String("login", acc.account.Login),
			zap.String("role", acc.role),
		)
	}

	if seeded == 0 {
		return nil
	}
	if err := users.SaveAll(ctx, existing); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}
