package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	pkg "github.com/poynterhq/poynter/pkg/internal"
	"github.com/poynterhq/poynter/pkg/internal/cache"
	"github.com/poynterhq/poynter/pkg/internal/database"
	"github.com/poynterhq/poynter/pkg/internal/http"
	"github.com/poynterhq/poynter/pkg/internal/http/api"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____                  _\n|  _ \\ ___  _   _ _ __ | |_ ___ _ __\n| |_) / _ \\| | | | '_ \\| __/ _ \\ '__|\n|  __/ (_) | |_| | | | | ||  __/ |\n|_|   \\___/ \\__, |_| |_|\\__\\___|_|\n            |___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Poynter"), pkg.AppVersion)
	fmt.Printf("The shared planning poker estimation board\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Wire the realtime synchronization core
	tallies := services.NewTallyStore()
	hub := services.NewBroadcaster()
	renderer := services.NewFragmentRenderer(tallies)

	api.Tallies = tallies
	api.Hub = hub
	api.Renderer = renderer
	api.Dispatcher = services.NewDispatcher(renderer, hub)

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.AddFunc("@every 60m", func() {
		if dropped := tallies.Sweep(); dropped > 0 {
			log.Debug().Int("dropped", dropped).Msg("Swept expired space tallies...")
		}
	})
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
