package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/rpc"
	"gridwright/engine/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over JSON-RPC on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		environment, err := bootstrap()
		if err != nil {
			return err
		}
		defer environment.cleanup()

		opts, err := environment.controllerOptions()
		if err != nil {
			return err
		}
		controller := session.New(grid.NewWithSheet("Sheet1"), opts...)
		service := rpc.NewService(controller, environment.store, Version, environment.logger)
		server := rpc.NewServer(rpc.APIVersion, os.Stdin, os.Stdout, environment.logger)
		service.RegisterAll(server)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := server.Serve(ctx); err != nil {
			environment.logger.Error("rpc.server_error", "error", err.Error())
			return err
		}
		return nil
	},
}
