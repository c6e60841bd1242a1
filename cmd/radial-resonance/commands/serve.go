package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/radial-resonance/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdin/stdout",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout. Logs go to
stderr. Configure it in your MCP client as a stdio server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(cfg,
			server.WithLogger(logger.Named("server")),
			server.WithVersion(buildInfo.Version))
		if err != nil {
			return err
		}
		logger.Info("MCP server starting",
			zap.String("version", buildInfo.Version),
			zap.Float64("vigilance", cfg.Model.Vigilance),
			zap.Float64("learning_rate", cfg.Model.LearningRate))
		return srv.Run()
	},
}

func init() {
	addModelFlags(serveCmd)
}
