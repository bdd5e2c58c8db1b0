package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/haggle/internal/adapters/httpapi"
	"github.com/bnema/haggle/internal/adapters/profile"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *app, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the negotiation agent HTTP API",
		Long:  "serve exposes the agent to the environment orchestrator. Replies are relayed to relay.base_url. SIGINT or SIGTERM stops accepting requests and waits for in-flight messages.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, app)
		},
	}

	cmd.Flags().String("listen", "", "Listen address (default: server.listen)")
	cmd.Flags().String("profile", "", "Utility profile file (TOML or YAML) installed before serving")
	_ = v.BindPFlag(config.KeyServerListen, cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag(config.KeyProfilePath, cmd.Flags().Lookup("profile"))

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, app *app) error {
	agent, err := app.agent(ctx)
	if err != nil {
		return err
	}

	if path := app.cfg.Profile.Path; path != "" {
		utility, err := profile.Load(path)
		if err != nil {
			return fmt.Errorf("load utility profile: %w", err)
		}
		if _, err := agent.service.SetUtility(ctx, application.SetUtilityCommand{Profile: utility}); err != nil {
			return fmt.Errorf("install utility profile: %w", err)
		}
	}

	listener, err := net.Listen("tcp", app.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", app.cfg.Server.Listen, err)
	}

	server := httpapi.NewServer(agent.handler, app.cfg.Server.Listen)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	status := agent.service.Status()
	app.logger.Info("agent listening", "addr", listener.Addr().String(), "agent", status.AgentID, "polite", status.Polite)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s\n", status.AgentID, listener.Addr()); err != nil {
		return err
	}

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	agent.dispatcher.Wait()
	app.logger.Info("agent stopped", "agent", status.AgentID)
	return nil
}
