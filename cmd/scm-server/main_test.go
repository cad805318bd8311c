package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
	})

	setupLogger(envOf(map[string]string{envLogLevel: " debug ", envLogFormat: "JSON"}))
	require.Equal(t, log.DebugLevel, log.GetLevel())
	require.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	setupLogger(envOf(map[string]string{envLogLevel: "verbose"}))
	require.Equal(t, log.InfoLevel, log.GetLevel(), "unknown level falls back to info")
	require.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)

	setupLogger(envOf(nil))
	require.Equal(t, log.InfoLevel, log.GetLevel())
}
