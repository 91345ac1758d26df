package colors

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// ErrInvalidColor marks user input that is not a parsable hex color. It is
// reported back to the invoking user, never treated as a fault.
var ErrInvalidColor = errors.New("invalid color code")

// Store persists color role records.
type Store interface {
	// GetColorRole returns nil when the member has no stored role.
	GetColorRole(ctx context.Context, userID, guildID snowflake.ID) (*types.ColorRole, error)
	UpsertColorRole(ctx context.Context, role *types.ColorRole) error
}

// RoleTransport is the slice of the Discord REST API the service needs.
type RoleTransport interface {
	CreateRole(ctx context.Context, guildID snowflake.ID, role discord.RoleCreate) (*discord.Role, error)
	UpdateRole(ctx context.Context, guildID, roleID snowflake.ID, role discord.RoleUpdate) (*discord.Role, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID snowflake.ID) error
}

// Service manages personal color roles: one low-profile role per member,
// updated in place when the member picks a new color.
type Service struct {
	store  Store
	rest   RoleTransport
	logger *zap.Logger
}

// New creates a color role service.
func New(store Store, rest RoleTransport, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		rest:   rest,
		logger: logger.Named("colors"),
	}
}

// ParseColor converts user-supplied hex input ("#ffaa99", "0xffaa99" or bare
// "ffaa99") into an RGB integer.
func ParseColor(input string) (int, error) {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "0x")
	cleaned = strings.TrimPrefix(cleaned, "#")

	value, err := strconv.ParseUint(cleaned, 16, 32)
	if err != nil || value > 0xFFFFFF {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, input)
	}

	return int(value), nil
}

// HandleMemberJoin re-grants a returning member's stored color role, if any.
func (s *Service) HandleMemberJoin(ctx context.Context, guildID, userID snowflake.ID) error {
	role, err := s.store.GetColorRole(ctx, userID, guildID)
	if err != nil {
		return fmt.Errorf("failed to look up color role: %w", err)
	}

	if role == nil {
		return nil
	}

	if err := s.rest.AddMemberRole(ctx, guildID, userID, role.RoleID); err != nil {
		return fmt.Errorf("failed to re-grant color role: %w", err)
	}

	s.logger.Info("Re-granted color role to returning member",
		zap.Uint64("guildID", uint64(guildID)),
		zap.Uint64("userID", uint64(userID)),
		zap.Uint64("roleID", uint64(role.RoleID)))

	return nil
}

// SetColor creates or recolors the member's personal role and makes sure the
// member carries it. Reports whether a new role was created.
func (s *Service) SetColor(
	ctx context.Context, guildID, userID snowflake.ID, userName string, color int,
) (bool, error) {
	existing, err := s.store.GetColorRole(ctx, userID, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to look up color role: %w", err)
	}

	if existing != nil {
		_, err := s.rest.UpdateRole(ctx, guildID, existing.RoleID, discord.RoleUpdate{
			Color: &color,
		})
		if err != nil {
			return false, fmt.Errorf("failed to update role color: %w", err)
		}

		existing.Color = color
		if err := s.store.UpsertColorRole(ctx, existing); err != nil {
			return false, fmt.Errorf("failed to save color role: %w", err)
		}

		// Re-grant in case the member lost the role since it was created.
		if err := s.rest.AddMemberRole(ctx, guildID, userID, existing.RoleID); err != nil {
			return false, fmt.Errorf("failed to grant color role: %w", err)
		}

		return false, nil
	}

	role, err := s.rest.CreateRole(ctx, guildID, discord.RoleCreate{
		Name:        userName,
		Color:       color,
		Hoist:       false,
		Mentionable: false,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create color role: %w", err)
	}

	record := &types.ColorRole{
		RoleID:   role.ID,
		UserID:   userID,
		GuildID:  guildID,
		Color:    color,
		RoleName: userName,
	}
	if err := s.store.UpsertColorRole(ctx, record); err != nil {
		return false, fmt.Errorf("failed to save color role: %w", err)
	}

	if err := s.rest.AddMemberRole(ctx, guildID, userID, role.ID); err != nil {
		return false, fmt.Errorf("failed to grant color role: %w", err)
	}

	s.logger.Info("Created color role",
		zap.Uint64("guildID", uint64(guildID)),
		zap.Uint64("userID", uint64(userID)),
		zap.Int("color", color))

	return true, nil
}
