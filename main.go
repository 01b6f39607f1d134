package main

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	"github.com/isotopp/falimage/internal/cli"
	"github.com/isotopp/falimage/internal/inject"
	"github.com/isotopp/falimage/internal/log"
)

func main() {
	logger := log.New(os.Stderr)
	ctx := log.NewContext(context.Background(), logger)
	ctx = logr.NewContextWithSlogLogger(ctx, logger)

	injector := inject.Setup(ctx)

	err := cli.New(injector).ExecuteContext(ctx)
	_ = injector.Shutdown()
	if err != nil {
		os.Exit(1)
	}
}
