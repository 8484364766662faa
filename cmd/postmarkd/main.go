// Command postmarkd runs the review daemon directly, without going
// through the CLI launcher. Systemd units and containers use this
// entrypoint; interactive use normally goes through `postmark start`.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"postmark/internal/config"
	"postmark/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "postmarkd: %v\n", err)
		os.Exit(1)
	}
}
