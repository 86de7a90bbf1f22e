package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bakito/tf-provider-gen/internal/flags"
	"github.com/bakito/tf-provider-gen/internal/generator"
)

const envPrefix = "TFGEN"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var dialect flags.Dialect

	cmd := &cobra.Command{
		Use:   "generate-tf-provider",
		Short: "Generate a terraform provider from an OpenAPI spec",
		Long: `Generate the source of a terraform provider plugin from an OpenAPI spec (2.0, 3.0 or 3.1)
and a provider configuration mapping API paths to resources.

The optional flags can also be set in the file passed with --config-file or as
environment variable with prefix ` + envPrefix + `_, e.g. ` + envPrefix + `_PROVIDER_NAME.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd, v.GetBool("verbose"))

			if d := v.GetString("dialect"); d != "" {
				if err := dialect.Set(d); err != nil {
					return fmt.Errorf("invalid dialect: %w", err)
				}
			}

			res, err := generator.Run(cmd.Context(), generator.Options{
				SpecFile:     v.GetString("spec"),
				Dialect:      dialect.Value(),
				ConfigFile:   v.GetString("config"),
				TargetDir:    v.GetString("target"),
				ProviderName: v.GetString("provider-name"),
				Author:       v.GetString("author"),
				Module:       v.GetString("module"),
				Workers:      v.GetInt("workers"),
			})
			if err != nil {
				return err
			}
			if v.GetBool("strict") {
				if err := res.Report.Err(); err != nil {
					return fmt.Errorf("provider generated with warnings: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("spec", "s", "", "The OpenAPI spec file (.yaml or .json)")
	cmd.Flags().VarP(&dialect, "dialect", "d", "The dialect of the spec (2.0, 3.0 or 3.1)")
	cmd.Flags().StringP("config", "c", "", "The provider configuration file")
	cmd.Flags().StringP("target", "t", "", "The target directory to generate the provider into")
	cmd.Flags().StringP("provider-name", "n", "", "The name of the provider, e.g. petstore")
	cmd.Flags().StringP("author", "a", "", "The author of the provider, used for the module path and registry address")
	cmd.Flags().StringP("module", "m", "", "The go module path of the provider (default github.com/<author>/terraform-provider-<name>)")
	cmd.Flags().IntP("workers", "w", 0, "The number of resources resolved in parallel (default one per CPU)")
	cmd.Flags().Bool("strict", false, "Fail if the generation reported warnings")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.Flags().String("config-file", "", "A yaml file providing defaults for the flags")

	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// bindConfig resolves flags from the command line, the environment and the optional config file,
// in this order of precedence.
func bindConfig(cmd *cobra.Command, v *viper.Viper) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config-file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return nil
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}
