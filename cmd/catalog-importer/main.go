// Package main imports catalog pack files into the forge store.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	entrypoint "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/cmd"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	catalogimporter "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/tools/importer/catalog"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceImporter))
	cfg, err := catalogimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := catalogimporter.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
