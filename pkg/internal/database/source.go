package database

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var C *gorm.DB

func NewGorm() error {
	dialector := postgres.Open(viper.GetString("database.dsn"))

	logLevel := logger.Silent
	if viper.GetBool("debug.print_db_queries") {
		logLevel = logger.Info
	}

	var err error
	C, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return err
	}

	log.Info().Msg("Database connected.")
	return nil
}
