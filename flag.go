package main

import (
	"flag"
	"log/slog"

	"github.com/sqlongithub/voxelbench/pkg/config"
)

// logLevelFlag is a flag.Value for slog levels. When unset the level from
// the config file applies.
type logLevelFlag struct {
	value slog.Level
	set   bool
}

func (l *logLevelFlag) String() string {
	return l.value.String()
}

func (l *logLevelFlag) Set(value string) error {
	v, err := config.ParseLevel(value)
	if err != nil {
		return err
	}
	l.value = v
	l.set = true
	return nil
}

// defined flags
var (
	levelFlag   logLevelFlag
	configFlag  = flag.String("config", "voxelbench.yaml", "path to the settings file")
	logFileFlag = flag.String("logfile", "", "write logs to this file, rotated, instead of the console")
	scriptFlag  = flag.String("script", "", "scene script to load at startup")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level (debug, info, warn, error)")
}
