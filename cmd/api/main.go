package main

import (
    "os"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "modelreport/internal/config"
    "modelreport/internal/handlers"
    "modelreport/internal/registry"
    "modelreport/pkg/utils"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        utils.Logger().Fatal("Invalid configuration", zap.Error(err))
    }
    logger := utils.NewLogger(cfg.Log.File, cfg.Log.Level)
    defer logger.Sync()

    var src handlers.Source
    if bundle := os.Getenv("BUNDLE_FILE"); bundle != "" {
        mem, err := registry.Open(bundle)
        if err != nil { logger.Fatal("Failed to load bundle", zap.String("path", bundle), zap.Error(err)) }
        src = mem
        logger.Info("Serving offline bundle", zap.String("path", bundle))
    } else {
        src = registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout(), logger)
        logger.Info("Serving registry", zap.String("url", cfg.Registry.URL))
    }

    if os.Getenv("GIN_MODE") == "" { gin.SetMode(gin.ReleaseMode) }
    h := handlers.New(src, handlers.Options{
        APIKey:     cfg.APIKey,
        Cache:      cfg.Registry.Cache,
        PlotWidth:  cfg.Plot.Width,
        PlotHeight: cfg.Plot.Height,
    }, logger)

    logger.Info("Listening", zap.String("port", cfg.Port))
    if err := h.Router().Run(":" + cfg.Port); err != nil {
        logger.Fatal("Server stopped", zap.Error(err))
    }
}
