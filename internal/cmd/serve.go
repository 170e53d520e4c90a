package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/auth"
	"github.com/coffersTech/daylog/internal/config"
	"github.com/coffersTech/daylog/internal/logger"
	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/query"
	"github.com/coffersTech/daylog/internal/server"
	"github.com/coffersTech/daylog/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		writer := logger.New(logger.Options{
			Directory: cfg.Log.Directory,
			Prefix:    cfg.Log.Prefix,
			MinLevel:  model.ParseLevel(cfg.Log.Level),
			Console:   cfg.Log.Console,
			File:      cfg.Log.File,
		})
		defer writer.Close()

		queries := query.NewEngine(cfg.Log.Directory, cfg.Log.Prefix, cfg.Query.DefaultPageSize, cfg.Query.MaxResults)

		users := auth.NewStore(cfg.Auth.Store)
		if cfg.Server.Auth {
			if err := users.Load(); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Retention.Days > 0 || cfg.Retention.CompressAfterDays > 0 {
			archiver := &store.Archiver{
				Dir:               cfg.Log.Directory,
				Prefix:            cfg.Log.Prefix,
				CompressAfterDays: cfg.Retention.CompressAfterDays,
				RetentionDays:     cfg.Retention.Days,
			}
			go archiver.Run(ctx, time.Hour)
		}

		srv := server.New(queries, writer, users, cfg.Server.Auth)
		addr := fmt.Sprintf(":%d", cfg.Server.Port)

		go func() {
			log.Printf("Listening on %s (auth: %v, directory: %s)", addr, cfg.Server.Auth, cfg.Log.Directory)
			if err := srv.Start(addr); err != nil {
				log.Printf("Server stopped: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Printf("Received signal: %v. Shutting down...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
