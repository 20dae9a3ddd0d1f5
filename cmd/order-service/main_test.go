package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/app"
)

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() {
		log.SetFormatter(&log.TextFormatter{})
		log.SetLevel(log.InfoLevel)
	})

	cfg := app.DefaultConfig()
	cfg.LogFormat = "text"
	cfg.LogLevel = "debug"
	setupLogger(cfg)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)

	cfg.LogFormat = "json"
	cfg.LogLevel = "verbose"
	setupLogger(cfg)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
}
