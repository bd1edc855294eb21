package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lockstep-network/lockstep/internal/config"
	"github.com/lockstep-network/lockstep/internal/core/domain"
	jsonrpc "github.com/lockstep-network/lockstep/internal/interface/rpc"
	log "github.com/sirupsen/logrus"
)

type factStream interface {
	Subscribe() <-chan domain.Event
}

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.AppConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid app config")
	}

	appSvc, err := cfg.AppConfig.AppService()
	if err != nil {
		log.Fatal(err)
	}

	if stream, ok := cfg.AppConfig.Publisher().(factStream); ok {
		go func() {
			for fact := range stream.Subscribe() {
				log.WithField("fact", fmt.Sprintf("%T", fact)).Info("fact published")
			}
		}()
	}

	svc := jsonrpc.NewService(
		fmt.Sprintf(":%d", cfg.Port), appSvc, cfg.RpcUser, cfg.RpcPassword,
	)

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
