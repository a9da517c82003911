package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"wareeye/config"
)

type commandContext struct {
	configPath string
	cfg        *config.Config
	logger     *log.Logger
}

// ensureConfig loads the configuration once. A missing file means defaults.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Printf("config %s not found; using defaults", c.configPath)
		cfg = &config.Config{}
		cfg.ApplyDefaults()
		err = nil
	}
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{logger: log.New(os.Stderr, "wareeye-scanner ", log.LstdFlags)}

	rootCmd := &cobra.Command{
		Use:           "wareeye-scanner",
		Short:         "Camera client that decodes barcodes and reports them to wareeyed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "./config/config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newSetupCommand(ctx))
	rootCmd.AddCommand(newDecodeCommand(ctx))

	return rootCmd
}
