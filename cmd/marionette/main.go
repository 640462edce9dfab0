package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/marionette/pkg/loader"
	"github.com/go-go-golems/marionette/pkg/logging"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "marionette",
	Short: "marionette replays scripted conversations with lifelike timing",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger because we can now parse --log-level and co
		// from the command line flag
		initLogger()
	},
}

func initLogger() {
	logLevel := viper.GetString("log-level")

	err := logging.Setup(logging.Config{
		Level:      logLevel,
		Format:     viper.GetString("log-format"),
		File:       viper.GetString("log-file"),
		Verbose:    viper.GetBool("verbose"),
		WithCaller: viper.GetBool("with-caller"),
	})
	cobra.CheckErr(err)
}

func initViper(configPath string) error {
	viper.SetEnvPrefix("marionette")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.marionette")
		viper.AddConfigPath("/etc/marionette")

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(xdgConfigPath + "/marionette")
		}
	}

	err := viper.ReadInConfig()
	// if the file does not exist, continue normally
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; ignore error
	} else if err != nil {
		return err
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err = viper.BindPFlags(rootCmd.PersistentFlags())
	if err != nil {
		return err
	}

	initLogger()

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	return nil
}

// loadScript resolves a script argument: a path, an http(s) URL, or "-" for
// stdin.
func loadScript(ctx context.Context, source string) (*script.Script, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "could not read script from stdin")
		}
		return loader.Parse(data, "")
	}
	return loader.Load(ctx, source)
}

func main() {
	_ = rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (json, text)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file (default: stderr)")

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/marionette/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	// parse the flags one time just to catch --config
	configFile := ""
	for idx, arg := range os.Args {
		if arg == "--config" {
			if len(os.Args) > idx+1 {
				configFile = os.Args[idx+1]
			}
		}
	}

	err := initViper(configFile)
	if err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newTuiCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newDocsCommand())
}
