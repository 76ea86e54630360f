package cli

import (
	"github.com/aalvaropc/appserve/internal/infra/logger"
	"github.com/aalvaropc/appserve/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *configFlags) error {
	s, err := loadSettings(cmd, flags)
	if err != nil {
		return err
	}

	cleanup, err := logger.Setup(logger.Config{
		Level:  s.cfg.Log.Level,
		Format: s.cfg.Log.Format,
		File:   s.cfg.Log.File,
		Debug:  flags.debug,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()
	if err := logger.IsReady(); err != nil {
		return err
	}

	log := logger.L().With("log_file", logger.Path(), "log_since", logger.InitTime())
	if s.source != "" {
		log.Info("config.loaded", "path", s.source)
	} else {
		log.Info("config.defaults", "dir", s.baseDir)
	}

	srv, err := server.New(s.cfg, log)
	if err != nil {
		log.Error("server.init", "err", err)
		return err
	}

	if err := srv.Run(cmd.Context()); err != nil {
		log.Error("server.failed", "err", err)
		return err
	}
	return nil
}
