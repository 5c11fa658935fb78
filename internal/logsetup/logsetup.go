// Package logsetup routes the standard library logger through zap.
//
// Binaries import it for side effects:
//
//	import _ "github.com/larsks/dronevision/internal/logsetup"
//
// The encoder is selected with DRONEVISION_LOG_FORMAT ("json" or "console",
// default "console") and the level with DRONEVISION_LOG_LEVEL (default "info").
package logsetup

import (
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLogFormat = "DRONEVISION_LOG_FORMAT"
	envLogLevel  = "DRONEVISION_LOG_LEVEL"
)

func init() {
	logger, err := NewLogger(os.Getenv(envLogFormat), os.Getenv(envLogLevel))
	if err != nil {
		log.Printf("failed to configure logging: %v", err)
		return
	}

	zap.ReplaceGlobals(logger)
	if _, err := zap.RedirectStdLogAt(logger, zapcore.InfoLevel); err != nil {
		log.Printf("failed to redirect standard logger: %v", err)
	}
}

// NewLogger builds a zap logger for the given format and level names.
// Empty values select the defaults.
func NewLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch strings.ToLower(format) {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	case "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, level)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	cfg.DisableStacktrace = true
	return cfg.Build()
}
