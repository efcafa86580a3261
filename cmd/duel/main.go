package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	duelcmd "github.com/xtding233/duel-engine/internal/cmd/duel"
	platformconfig "github.com/xtding233/duel-engine/internal/platform/config"
)

func main() {
	cfg, err := duelcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		platformconfig.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[DUEL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := duelcmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("duel: %v", err)
	}
}
