package http

import (
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	pkg "github.com/poynterhq/poynter/pkg/internal"
	"github.com/poynterhq/poynter/pkg/internal/http/api"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "Poynter",
		AppName:               "Poynter v" + pkg.AppVersion,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             4 * 1024 * 1024,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
	})

	api.MapAPIs(app, "/api")
	api.MapWebsocket(app, "/ws")

	return &App{app}
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting the web server...")
	}
}
