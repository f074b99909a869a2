package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"vcr_renderer/config"
)

func init() {
	// SDL and Vulkan calls must all come from the main OS thread.
	runtime.LockOSThread()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Println("Starting VCR renderer")
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vcr_renderer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Destroy()
	return app.Run()
}
