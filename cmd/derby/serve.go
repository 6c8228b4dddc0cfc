package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"marble-derby/internal/playback"
	"marble-derby/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Host the HTTP preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			session, err := playback.New(cfg)
			if err != nil {
				return err
			}

			router := server.NewRouter(server.RouterConfig{Session: session})

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			log.Info("preview server listening", "addr", addr, "frames", session.Len())
			return srv.ListenAndServe()
		},
	}
}
