package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/t-hosaka/webpush-agent/pkg/config"
	"github.com/t-hosaka/webpush-agent/pkg/platform"
	"github.com/t-hosaka/webpush-agent/pkg/registry"
	"github.com/t-hosaka/webpush-agent/pkg/subscription"
)

const version = "0.1.0"

var (
	cfgFile     string
	registryURL string
	stateDir    string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "webpush-agent",
	Short: "Push notification subscription agent",
	Long:  "Manages this device's push notification subscription lifecycle against a backend device registry",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&registryURL, "registry-url", "r", "", "Device registry base URL")
	rootCmd.PersistentFlags().StringVarP(&stateDir, "state-dir", "s", "", "State directory path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	for _, name := range []string{"config", "registry-url", "state-dir", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Printf("Failed to bind %s flag: %v", name, err)
		}
	}

	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(resetDismissalsCmd)
}

func loadConfig() *config.Config {
	cfg := config.DefaultConfig()
	if cfgFile != "" {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Printf("Failed to load config from %s, using defaults: %v", cfgFile, err)
		} else {
			cfg = loaded
		}
	}
	if registryURL != "" {
		cfg.RegistryURL = registryURL
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	return cfg
}

func newPlatform(cfg *config.Config) *platform.LocalPlatform {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("webpush-agent/%s (%s)", version, runtime.GOOS)
	}
	return platform.NewLocalPlatform(platform.LocalConfig{
		StateDir:       cfg.StateDir,
		PushServiceURL: cfg.PushServiceURL,
		UserAgent:      userAgent,
	})
}

func newManager(cfg *config.Config, p platform.Platform) *subscription.Manager {
	return subscription.NewManager(p, registry.NewClient(cfg.RegistryURL))
}

func main() {
	cobra.OnInitialize(func() {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
