package main

import (
	"embed"
	"log"
	"net/http"

	"github.com/chazu/stereo/pkg/config"
	"github.com/chazu/stereo/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed frontend
var assets embed.FS

func main() {
	cfg := config.Load()
	app := NewApp(cfg)

	err := wails.Run(&options.App{
		Title:  "stereo",
		Width:  cfg.WindowWidth,
		Height: cfg.WindowHeight,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: fallbackHandler(cfg, app),
		},
		OnStartup: app.startup,
		Bind:      []interface{}{app},
	})
	if err != nil {
		log.Fatalf("wails: %v", err)
	}
}

// fallbackHandler serves requests the embedded assets do not answer.
func fallbackHandler(cfg *config.Config, app *App) http.Handler {
	mux := http.NewServeMux()
	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector(app.snapshot))
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	return mux
}
