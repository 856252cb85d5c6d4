package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MarcoPoloResearchLab/planner/internal/api"
	"github.com/MarcoPoloResearchLab/planner/internal/config"
	"github.com/MarcoPoloResearchLab/planner/internal/host"
	"github.com/MarcoPoloResearchLab/planner/internal/logging"
	"github.com/MarcoPoloResearchLab/planner/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Planner mini-app engine on a terminal host",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("api-url", defaults.GetString("api.base_url"), "Planner API base URL")
	cmd.PersistentFlags().Int64("user-id", 0, "Authenticated user id supplied by the host platform")
	cmd.PersistentFlags().String("user-name", defaults.GetString("user.first_name"), "Display name of the user")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "api.base_url", "api-url")
	bindFlag(cmd, "user.id", "user-id")
	bindFlag(cmd, "user.first_name", "user-name")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runClient(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if appConfig.UserID <= 0 {
		return fmt.Errorf("user.id is required (pass --user-id)")
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	storeClient, err := api.NewClient(api.ClientConfig{
		BaseURL: appConfig.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	terminal := host.NewTerminal(host.TerminalConfig{
		User:   host.User{ID: appConfig.UserID, FirstName: appConfig.UserFirstName},
		HasID:  true,
		Input:  os.Stdin,
		Output: os.Stdout,
	})

	engine, err := session.NewSession(session.Config{
		Store:  storeClient,
		Host:   terminal,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if err := engine.Start(ctx); err != nil {
		return err
	}

	loop := commandLoop{
		session:  engine,
		terminal: terminal,
		output:   os.Stdout,
	}
	return loop.run(ctx)
}
