package database

import (
	"github.com/poynterhq/poynter/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Project{},
	&models.Space{},
	&models.SpaceMember{},
	&models.Ticket{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.Snapshot{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
