package main

import (
	"context"
	"os"

	"sharmoutabot/internal/transports/cli"
	"sharmoutabot/pkg/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	root := cli.New(buildVersion())
	if err := root.ExecuteContext(context.Background()); err != nil {
		lg := logger.NewWithOptions(logger.Options{Level: os.Getenv("LOG_LEVEL"), Output: os.Stderr})
		lg.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
