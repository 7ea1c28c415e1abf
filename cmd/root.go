// Package cmd provides the entrypoint for the payment-webhook cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isometry/payment-webhook/internal/config"
	"github.com/isometry/payment-webhook/internal/helpers"
)

// ConfigFileEnv names the environment variable holding the configuration file path.
const ConfigFileEnv = "CONFIG_FILE"

// modeAnnotation pins the runtime mode of a subcommand.
const modeAnnotation = "mode"

var (
	configFilePath string
	logger         *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
	// Count makes an int flag a repeatable counter, e.g. -vvv.
	Count bool
}

// New returns the root command for the payment-webhook.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment-webhook",
		Short: "Receives signed payment provider webhooks and records transaction state",
		Long: fmt.Sprintf("Receives signed payment provider webhooks and records transaction state.\n\n"+
			"Configuration is read from the YAML file named by $%s (default config.yaml), "+
			"then overridden by environment variables and flags.", ConfigFileEnv),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if mode, ok := cmd.Annotations[modeAnnotation]; ok {
				config.Global.Mode = mode
			}
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = helpers.NewJSONLogger(os.Stdout, config.Global.Logging.Verbosity, config.Global.Logging.CallerTrace).
				With("mode", config.Global.Mode)
			return config.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd.Context())
			case config.ModeLambda:
				return runLambda(cmd.Context())
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	configFilePath = "config.yaml"
	if path, found := os.LookupEnv(ConfigFileEnv); found {
		configFilePath = path
	}

	// Configuration loading & defaults
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapInt)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapBool)
	bindEnvMap(cmd, svcEnvMapInt64)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, lambdaEnvMapString)
}
