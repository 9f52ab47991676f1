package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quantdesk/quantdesk/pkg/config"
	"github.com/quantdesk/quantdesk/pkg/configschema"
	"github.com/quantdesk/quantdesk/pkg/observability/logger"
	"github.com/quantdesk/quantdesk/pkg/version"
)

// RootCommandOptions configures the operator CLI.
type RootCommandOptions struct {
	Name        string
	Description string
	ConfigPath  string
	EnvPrefix   string
}

// NewRootCommand creates the operator CLI with config and version subcommands.
func NewRootCommand(opts RootCommandOptions) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "quantdesk"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "APP"
	}

	rootCmd := &cobra.Command{
		Use:   opts.Name,
		Short: opts.Description,
	}

	var cfgPath string
	var secretFilePath string
	var envPrefix string
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", opts.ConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&secretFilePath, "secret-file", "", "path to secrets file (sets APP_SECRETS_FILE)")
	rootCmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", opts.EnvPrefix, "environment variable prefix")
	config.RegisterFlags(rootCmd.PersistentFlags())

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current(opts.Name)
			fmt.Printf("Service:    %s\n", info.Service)
			fmt.Printf("Version:    %s\n", info.Version)
			fmt.Printf("Commit:     %s\n", info.Commit)
			fmt.Printf("Build Time: %s\n", info.BuildTime)
		},
	})

	// config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applySecretFileFlag(envPrefix, secretFilePath); err != nil {
				return err
			}
			loader := config.NewViperLoader(cfgPath, envPrefix).WithFlags(cmd.Flags())
			if _, _, err := loader.LoadWithSecrets(); err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					for _, field := range verr.Fields {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", field.Field, field.Reason)
					}
				}
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Println("✓ Configuration is valid")
			return nil
		},
	})

	var showSecrets bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applySecretFileFlag(envPrefix, secretFilePath); err != nil {
				return err
			}
			loader := config.NewViperLoader(cfgPath, envPrefix).WithFlags(cmd.Flags())
			cfg, secrets, err := loader.LoadWithSecrets()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if showSecrets || secrets == nil {
				formatted, err := formatSettings(cfg.Settings())
				if err != nil {
					return err
				}
				fmt.Print(formatted)
				return nil
			}
			fmt.Print(cfg.Redacted(secrets))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configCmd.AddCommand(showCmd)

	var initOutput string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration template with all defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatted, err := formatSettings(config.DefaultConfig().Settings())
			if err != nil {
				return err
			}
			// Refuse to clobber an existing file
			f, err := os.OpenFile(initOutput, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return fmt.Errorf("create config template %s: %w", initOutput, err)
			}
			defer f.Close()
			if _, err := f.WriteString(formatted); err != nil {
				return fmt.Errorf("write config template %s: %w", initOutput, err)
			}
			fmt.Printf("wrote %s\n", initOutput)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "output file path")
	configCmd.AddCommand(initCmd)

	configCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := configschema.BuildSchema()
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	})

	rootCmd.AddCommand(configCmd)

	return rootCmd
}

// LoadConfigAndLogger loads the configuration and builds the logger it
// describes. Shared by commands that need both.
func LoadConfigAndLogger(cfgPath, envPrefix, secretFilePath string) (*config.Config, logger.Logger, error) {
	if envPrefix == "" {
		envPrefix = "APP"
	}
	if err := applySecretFileFlag(envPrefix, secretFilePath); err != nil {
		return nil, nil, err
	}
	loader := config.NewViperLoader(cfgPath, envPrefix)
	cfg, _, err := loader.LoadWithSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:  logger.LogLevel(cfg.Observability.LogLevel),
		Format: logger.LogFormat(cfg.Observability.LogFormat),
	}
	log, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, log, nil
}

func applySecretFileFlag(envPrefix, secretFilePath string) error {
	if secretFilePath == "" {
		return nil
	}
	info, err := os.Stat(secretFilePath)
	if err != nil {
		return fmt.Errorf("secret file %s is not accessible: %w", secretFilePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("secret file %s must not be a directory", secretFilePath)
	}
	return os.Setenv(resolveEnvPrefix(envPrefix)+"_SECRETS_FILE", filepath.Clean(secretFilePath))
}

func formatSettings(settings map[string]any) (string, error) {
	if settings == nil {
		return "{}\n", nil
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func resolveEnvPrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "APP"
	}
	return strings.ToUpper(trimmed)
}

// Execute runs the command and exits with appropriate code.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
