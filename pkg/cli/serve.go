package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/cli/config"
	controller "github.com/m-mizutani/spotless-bot/pkg/controller/http"
	"github.com/m-mizutani/spotless-bot/pkg/infra/build"
	"github.com/m-mizutani/spotless-bot/pkg/infra/git"
	"github.com/m-mizutani/spotless-bot/pkg/infra/github"
	"github.com/m-mizutani/spotless-bot/pkg/infra/ledger"
	"github.com/m-mizutani/spotless-bot/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		githubCfg   config.GitHub
		pipelineCfg config.Pipeline
		sentryCfg   config.Sentry
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting spotless-bot server",
				slog.String("addr", serverCfg.Addr),
				slog.String("work_dir", pipelineCfg.WorkDir),
				slog.Bool("dev_mode", serverCfg.DevMode),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentryCfg.Flush(5 * time.Second)

			// Credentials are loaded before anything is accepted
			app, err := github.NewApp(githubCfg.AppID, githubCfg.PrivateKeyPath,
				github.WithBaseURL(githubCfg.APIURL),
			)
			if err != nil {
				return err
			}

			buildCommand, err := pipelineCfg.Command()
			if err != nil {
				return err
			}
			builder, err := build.New(buildCommand, pipelineCfg.BuildTimeout)
			if err != nil {
				return err
			}

			runLedger, err := ledger.New(pipelineCfg.WorkDir)
			if err != nil {
				return err
			}
			// Claims left by a previous process can never be released
			if _, err := runLedger.Reconcile(ctx); err != nil {
				return goerr.Wrap(err, "failed to clean up work directory")
			}

			// Create use cases
			pipelineUC := usecase.NewPipeline(runLedger, git.New(""), builder)
			commandOpts := []usecase.CommandOption{
				usecase.WithBotName(githubCfg.BotName),
			}
			if githubCfg.BotUserID != 0 {
				commandOpts = append(commandOpts, usecase.WithBotUserID(githubCfg.BotUserID))
			}
			commandUC := usecase.NewCommand(app, pipelineUC, commandOpts...)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				commandUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithDevMode(serverCfg.DevMode),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Waiting for running pipelines")
			commandUC.Wait()

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
