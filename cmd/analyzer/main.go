package main

import (
    "context"
    "flag"
    "fmt"
    "math/rand"
    "os"
    "path/filepath"
    "strings"
    "time"

    "go.uber.org/zap"

    "modelreport/internal/config"
    "modelreport/internal/data"
    "modelreport/internal/features"
    "modelreport/internal/models"
    "modelreport/internal/plotting"
    "modelreport/internal/registry"
    "modelreport/pkg/utils"
)

func main() {
    cfgPath := flag.String("config", "", "Config file (.yaml or .toml)")
    bundle := flag.String("bundle", "", "Offline bundle JSON; empty uses the registry")
    gen := flag.Bool("gen", false, "Generate a synthetic infogram bundle into -bundle first")
    predictors := flag.Int("predictors", 12, "Predictors in the synthetic bundle")
    protected := flag.String("protected", "", "Comma-separated protected columns for the synthetic bundle")
    totalTh := flag.Float64("total_information_threshold", data.Unset, "Core infogram x threshold for -gen (<= -1 uses 0.1)")
    netTh := flag.Float64("net_information_threshold", data.Unset, "Core infogram y threshold for -gen (<= -1 uses 0.1)")
    relevanceTh := flag.Float64("relevance_index_threshold", data.Unset, "Fair infogram x threshold for -gen (<= -1 uses 0.1)")
    safetyTh := flag.Float64("safety_index_threshold", data.Unset, "Fair infogram y threshold for -gen (<= -1 uses 0.1)")
    id := flag.String("model", "infogram_demo", "Infogram model id")
    train := flag.Bool("train", true, "Plot the training split")
    valid := flag.Bool("valid", false, "Plot the validation split")
    xval := flag.Bool("xval", false, "Plot the cross-validation holdout split")
    legend := flag.Bool("legend", false, "Draw a legend")
    title := flag.String("title", "Infogram", "Plot title")
    server := flag.Bool("server", false, "Headless: build the figure without writing it")
    outImg := flag.String("out_img", "", "PNG output (default <plot dir>/<model>.png)")
    flag.Parse()

    cfg, err := config.Load(*cfgPath)
    if err != nil { fmt.Println("Invalid configuration:", err); os.Exit(1) }
    logger := utils.NewLogger(cfg.Log.File, cfg.Log.Level)
    defer logger.Sync()

    if *gen {
        if *bundle == "" { logger.Fatal("-gen needs -bundle") }
        var cols []string
        if *protected != "" { cols = strings.Split(*protected, ",") }
        th := features.NewThresholdParams(cols, logger)
        for _, adv := range []*data.Advisory{
            th.SetTotalInformationThreshold(*totalTh),
            th.SetNetInformationThreshold(*netTh),
            th.SetRelevanceIndexThreshold(*relevanceTh),
            th.SetSafetyIndexThreshold(*safetyTh),
        } {
            if adv != nil { fmt.Println("warning:", adv) }
        }
        var params data.Parameters
        th.Apply(&params)
        rng := rand.New(rand.NewSource(time.Now().UnixNano()))
        b := data.GenerateInfogramBundle(rng, *id, *predictors, params)
        if err := data.WriteBundle(*bundle, b); err != nil { logger.Fatal("Failed to write bundle", zap.Error(err)) }
        logger.Info("Synthetic bundle written", zap.String("path", *bundle))
    }

    var src interface {
        features.FrameSource
        models.Registry
    }
    if *bundle != "" {
        mem, err := registry.Open(*bundle)
        if err != nil { logger.Fatal("Failed to load bundle", zap.Error(err)) }
        src = mem
    } else {
        src = registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout(), logger)
    }

    ctx := context.Background()
    m, err := src.GetModel(ctx, *id)
    if err != nil { logger.Fatal("Failed to fetch model", zap.Error(err)) }
    ig, err := features.NewInfogram(m, src, logger)
    if err != nil { logger.Fatal("Not an infogram result", zap.Error(err)) }

    splits := []struct {
        on bool
        s  data.Split
    }{{*train, data.Training}, {*valid, data.Validation}, {*xval, data.Holdout}}
    for _, sp := range splits {
        if !sp.on { continue }
        feats, err := ig.AdmissibleFeatures(sp.s)
        if err != nil { logger.Fatal("No admissible features", zap.Stringer("split", sp.s), zap.Error(err)) }
        fmt.Printf("%s: %d admissible: %s\n", sp.s, len(feats), strings.Join(feats, ", "))
    }

    path := *outImg
    if path == "" { path = filepath.Join(cfg.Plot.Dir, *id+".png") }
    surface := plotting.NewGonum(cfg.Plot.Width, cfg.Plot.Height, path)
    fig, err := ig.Plot(ctx, surface, features.PlotOptions{
        Train: *train, Valid: *valid, Xval: *xval,
        Title: *title, Legend: *legend, Show: !*server,
    })
    if err != nil { logger.Fatal("Failed to plot infogram", zap.Error(err)) }
    if fig.Path != "" {
        fmt.Println("Infogram saved to:", fig.Path)
    }
}
