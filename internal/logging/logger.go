package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const service = "mycsd-points"

type Log struct {
	Base *zap.Logger
	// Level можно менять на лету: GET/PUT /loglevel
	Level  zap.AtomicLevel
	Closer func()
}

// ParseLevel — неизвестное значение даёт info.
func ParseLevel(level string) zap.AtomicLevel {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return lvl
}

// Init: env=prod — JSON, иначе консоль. Каждая запись несёт service/env/version.
func Init(level, env, version string) (*Log, error) {
	lvl := ParseLevel(level)
	var cfg zap.Config
	if strings.EqualFold(env, "prod") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
		"version": version,
	}

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return &Log{
		Base:   base,
		Level:  lvl,
		Closer: func() { _ = base.Sync() },
	}, nil
}
