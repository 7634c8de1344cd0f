package main

import (
    "context"
    "encoding/csv"
    "errors"
    "flag"
    "fmt"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "go.uber.org/zap"

    "modelreport/internal/config"
    "modelreport/internal/data"
    "modelreport/internal/models"
    "modelreport/internal/registry"
    "modelreport/pkg/utils"
)

func main() {
    cfgPath := flag.String("config", "", "Config file (.yaml or .toml)")
    bundle := flag.String("bundle", "", "Offline bundle JSON; empty uses the registry")
    gen := flag.Bool("gen", false, "Generate a synthetic model selection bundle into -bundle first")
    mode := flag.String("mode", "forward", "Search mode for -gen: forward|backward|allsubsets|maxr|maxrsweep")
    maxK := flag.Int("max_k", 8, "Largest subset size for -gen")
    minK := flag.Int("min_k", 1, "Smallest subset size for -gen (backward only)")
    glm := flag.Bool("glm", false, "Build GLM sub-models for maxrsweep in -gen")
    id := flag.String("model", "modelselection_demo", "Model selection model id")
    size := flag.Int("predictor_size", 0, "Print only this subset size (0 = all)")
    normalized := flag.Bool("normalized", false, "Use standardized coefficients")
    cache := flag.Bool("cache", false, "Reuse fetched sub-models within this run")
    outCsv := flag.String("out_csv", "data/coefficients.csv", "CSV of coefficients per subset size")
    outImg := flag.String("out_img", "", "PNG of best R2 per subset size (default <plot dir>/<model>_r2.png)")
    flag.Parse()

    cfg, err := config.Load(*cfgPath)
    if err != nil { fmt.Println("Invalid configuration:", err); os.Exit(1) }
    logger := utils.NewLogger(cfg.Log.File, cfg.Log.Level)
    defer logger.Sync()

    if *gen {
        if *bundle == "" { logger.Fatal("-gen needs -bundle") }
        m := data.SearchMode(*mode)
        if !m.Valid() { logger.Fatal("Unknown mode", zap.String("mode", *mode)) }
        rng := rand.New(rand.NewSource(time.Now().UnixNano()))
        b := data.GenerateSelectionBundle(rng, *id, m, *maxK, *minK, *glm)
        if err := data.WriteBundle(*bundle, b); err != nil { logger.Fatal("Failed to write bundle", zap.Error(err)) }
        logger.Info("Synthetic bundle written", zap.String("path", *bundle), zap.String("mode", *mode))
    }

    var reg models.Registry
    if *bundle != "" {
        mem, err := registry.Open(*bundle)
        if err != nil { logger.Fatal("Failed to load bundle", zap.Error(err)) }
        reg = mem
    } else {
        reg = registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout(), logger)
    }

    ctx := context.Background()
    parent, err := reg.GetModel(ctx, *id)
    if err != nil { logger.Fatal("Failed to fetch model", zap.Error(err)) }
    opts := []models.Option{models.WithLogger(logger)}
    if *cache || cfg.Registry.Cache { opts = append(opts, models.WithModelCache()) }
    ms, err := models.NewModelSelection(parent, reg, opts...)
    if err != nil { logger.Fatal("Not a usable model selection result", zap.Error(err)) }

    if *size > 0 {
        c, err := ms.Coefficients(ctx, *size, *normalized)
        if errors.Is(err, data.ErrInvalidSubsetSize) { fmt.Println(err); os.Exit(2) }
        if err != nil { logger.Fatal("Failed to resolve coefficients", zap.Error(err)) }
        printCoefficients(*size, c)
        return
    }

    all, err := ms.AllCoefficients(ctx, *normalized)
    if err != nil { logger.Fatal("Failed to resolve coefficients", zap.Error(err)) }
    for i, c := range all { printCoefficients(i+1, c) }

    if steps, adv := ms.PredictorsAddedPerStep(); adv == nil {
        logger.Info("Predictors added per step", zap.Any("steps", steps))
    }
    logger.Info("Predictors removed per step", zap.Any("steps", ms.PredictorsRemovedPerStep()))

    if err := writeCoefficientsCSV(*outCsv, all); err != nil {
        logger.Warn("Failed to write coefficients CSV", zap.Error(err))
    } else {
        logger.Info("Coefficients saved", zap.String("csv", *outCsv))
    }

    img := *outImg
    if img == "" { img = filepath.Join(cfg.Plot.Dir, *id+"_r2.png") }
    if err := plotR2PNG(img, ms); err != nil {
        logger.Warn("Failed to write R2 curve", zap.Error(err))
    } else {
        logger.Info("R2 curve saved", zap.String("png", img))
    }
}

func printCoefficients(size int, c *models.Coefficients) {
    if c == nil { fmt.Printf("%2d predictors: no coefficients\n", size); return }
    parts := make([]string, c.Len())
    for i := range c.Names { parts[i] = fmt.Sprintf("%s=%.4f", c.Names[i], c.Values[i]) }
    fmt.Printf("%2d predictors: %s\n", size, strings.Join(parts, " "))
}

func writeCoefficientsCSV(path string, all []*models.Coefficients) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"predictor_size", "name", "coefficient"}); err != nil { return err }
    for i, c := range all {
        if c == nil { continue }
        for j := range c.Names {
            rec := []string{strconv.Itoa(i + 1), c.Names[j], fmt.Sprintf("%.6f", c.Values[j])}
            if err := w.Write(rec); err != nil { return err }
        }
    }
    return nil
}

// plotR2PNG draws best R2 against subset size. The stored R2 list follows the
// stored model order, which ends at the largest subset.
func plotR2PNG(path string, ms *models.ModelSelection) error {
    r2 := ms.BestR2Values()
    if len(r2) == 0 { return fmt.Errorf("%w: no best_r2_values", data.ErrMissingResult) }
    p := plot.New()
    p.Title.Text = "Best R2 per subset size"
    p.X.Label.Text = "Predictors"
    p.Y.Label.Text = "R2"
    p.Y.Min = 0
    p.Y.Max = 1

    first := ms.MaxPredictorSize() - len(r2) + 1
    pts := make(plotter.XYs, len(r2))
    for i := range r2 { pts[i].X = float64(first + i); pts[i].Y = r2[i] }
    if err := plotutil.AddLinePoints(p, string(ms.Mode()), pts); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
