// Package main runs the forge command line.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	forgecmd "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/cmd/forge"
	entrypoint "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/cmd"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceCLI))
	cfg, err := forgecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := forgecmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.Exitf("Error: %v", err)
	}
}
