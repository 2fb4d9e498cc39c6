package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ru-addr/internal/web"
)

func createServeCmd() *cobra.Command {
	var (
		configFile string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the splitter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokens()
			if err != nil {
				return err
			}

			cfg := web.DefaultConfig()
			if configFile != "" {
				if cfg, err = web.LoadConfig(configFile); err != nil {
					return err
				}
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if cfg.Auth.Enabled && cfg.Auth.APIKey == "" {
				return fmt.Errorf("auth enabled without an API key")
			}

			return web.NewServer(cfg, newSplitter(tokens), tokens.FieldMap).Start()
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "JSON server configuration")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port (overrides config)")
	return cmd
}
