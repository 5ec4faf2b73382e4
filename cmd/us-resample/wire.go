//go:build wireinject
// +build wireinject

package main

import (
	"us-resample/internal/app"
	"us-resample/internal/batch"

	"github.com/google/wire"
)

// App holds application dependencies built by Wire.
type App struct {
	Config *app.Config
	Runner *batch.Runner
}

// InitializeApp builds App (Config + packet loader/saver + Runner) via Wire.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvidePacketLoader,
		app.ProvidePacketSaver,
		app.ProvideRunner,
		wire.Struct(new(App), "Config", "Runner"),
	)
	return nil, nil
}
