package utils

import (
    "os"
    "path/filepath"

    "github.com/mattn/go-isatty"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger returns the process logger, configured from LOG_FILE and LOG_LEVEL on first use.
func Logger() *zap.Logger {
    if logger != nil { return logger }
    logger = NewLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
    return logger
}

// NewLogger writes JSON to stdout, human-readable when stdout is a terminal,
// and tees to file when one is given.
func NewLogger(file, level string) *zap.Logger {
    lvl := zapcore.InfoLevel
    if level != "" {
        if l, err := zapcore.ParseLevel(level); err == nil { lvl = l }
    }
    encCfg := zap.NewProductionEncoderConfig()
    encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
    var consoleEnc zapcore.Encoder
    if isatty.IsTerminal(os.Stdout.Fd()) {
        consoleEnc = zapcore.NewConsoleEncoder(encCfg)
    } else {
        consoleEnc = zapcore.NewJSONEncoder(encCfg)
    }
    consoleCore := zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), lvl)
    if file == "" { return zap.New(consoleCore) }
    _ = os.MkdirAll(filepath.Dir(file), 0o755)
    f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil { return zap.New(consoleCore) }
    fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), lvl)
    return zap.New(zapcore.NewTee(fileCore, consoleCore))
}
