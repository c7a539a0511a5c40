package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/server"
	"github.com/weillium/ai-portfolio/store"
	"github.com/weillium/ai-portfolio/store/db"
)

const greetingBanner = `AI agents workbench`

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "An agent session workbench service",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:       viper.GetString("mode"),
			Addr:       viper.GetString("addr"),
			Port:       viper.GetInt("port"),
			Data:       viper.GetString("data"),
			Driver:     viper.GetString("driver"),
			DSN:        viper.GetString("dsn"),
			Secret:     viper.GetString("secret"),
			AIProvider: viper.GetString("ai-provider"),
			AIAPIKey:   viper.GetString("ai-api-key"),
			AIBaseURL:  viper.GetString("ai-base-url"),
			AIModel:    viper.GetString("ai-model"),
			Version:    profile.Version,
		}
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid profile", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigc
			s.Shutdown(ctx)
			cancel()
		}()

		printGreeting(instanceProfile)
		if err := s.Start(ctx); err != nil {
			if ctx.Err() == nil {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}
		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, one of "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign access tokens")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("workbench")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func printGreeting(p *profile.Profile) {
	fmt.Printf("%s v%s\n", greetingBanner, p.Version)
	fmt.Printf("mode=%s driver=%s port=%d\n", p.Mode, p.Driver, p.Port)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
