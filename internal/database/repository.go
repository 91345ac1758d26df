package database

import (
	"github.com/cyberbun/cyberbun/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all model operations.
type Repository struct {
	setting   *models.SettingModel
	starboard *models.StarboardModel
	reminder  *models.ReminderModel
	color     *models.ColorModel
}

// NewRepository creates a repository with all model instances.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		setting:   models.NewSetting(db, logger),
		starboard: models.NewStarboard(db, logger),
		reminder:  models.NewReminder(db, logger),
		color:     models.NewColor(db, logger),
	}
}

// Setting returns the guild settings model.
func (r *Repository) Setting() *models.SettingModel {
	return r.setting
}

// Starboard returns the starred message model.
func (r *Repository) Starboard() *models.StarboardModel {
	return r.starboard
}

// Reminder returns the reminder model.
func (r *Repository) Reminder() *models.ReminderModel {
	return r.reminder
}

// Color returns the color role model.
func (r *Repository) Color() *models.ColorModel {
	return r.color
}
