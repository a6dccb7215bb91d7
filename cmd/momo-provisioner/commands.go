package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/EternisAI/momo-provisioner/internal/momo"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	output     string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "momo-provisioner",
		Short:         "Provision sandbox API users and access tokens for the MoMo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := validateOutput(opts.output); err != nil {
				return err
			}
			return InitConfig(opts.configFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (default: application.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")

	cmd.AddCommand(createUserCmd(opts))
	cmd.AddCommand(getUserCmd(opts))
	cmd.AddCommand(createKeyCmd(opts))
	cmd.AddCommand(tokenCmd(opts))
	cmd.AddCommand(bootstrapCmd(opts))
	cmd.AddCommand(provisionCmd(opts))
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func newProvisioner() (*momo.Provisioner, error) {
	cfg, err := config.Momo.ProvisioningConfig()
	if err != nil {
		return nil, err
	}
	return momo.NewProvisioner(cfg)
}

func createUserCmd(opts *rootOptions) *cobra.Command {
	var generateID bool

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register the configured reference id as an API user",
		Long: `Register an API user with the provider (POST /v1_0/apiuser).

The reference id comes from momo.user_id (or UUID in the environment). With
--generate-id a fresh UUID is used instead; note it down, the later steps need it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generateID {
				config.Momo.UserID = uuid.New().String()
				slog.Info("Generated reference id", "user_id", config.Momo.UserID)
			}

			p, err := newProvisioner()
			if err != nil {
				return err
			}
			if err := p.CreateAPIUser(cmd.Context()); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, result{
				UserID:            p.UserID(),
				TargetEnvironment: config.Momo.TargetEnvironment,
			})
		},
	}

	cmd.Flags().BoolVar(&generateID, "generate-id", false, "Generate a new UUID reference id instead of using the configured one")
	return cmd
}

func getUserCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the provider's record for the configured API user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProvisioner()
			if err != nil {
				return err
			}
			user, err := p.GetAPIUser(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, result{
				UserID:               user.UserID,
				ProviderCallbackHost: user.ProviderCallbackHost,
				TargetEnvironment:    user.TargetEnvironment,
			})
		},
	}
}

func createKeyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-key",
		Short: "Issue a new API key for the configured API user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProvisioner()
			if err != nil {
				return err
			}
			key, err := p.CreateAPIKey(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, result{
				UserID: p.UserID(),
				APIKey: string(key),
			})
		},
	}
}

func tokenCmd(opts *rootOptions) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Exchange an API key for an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiKey == "" {
				return errors.New("--api-key is required")
			}
			p, err := newProvisioner()
			if err != nil {
				return err
			}
			token, err := p.IssueAccessToken(cmd.Context(), momo.APIKey(apiKey))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, tokenResult(p.UserID(), token))
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key returned by create-key")
	return cmd
}

func bootstrapCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create an API key and exchange it for an access token",
		Long: `Create an API key for an existing API user and immediately exchange it for an
access token. The user must already exist (see create-user or provision).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProvisioner()
			if err != nil {
				return err
			}
			token, err := p.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, tokenResult(p.UserID(), token))
		},
	}
}

func provisionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the API user, an API key and an access token in one run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProvisioner()
			if err != nil {
				return err
			}
			token, err := p.Provision(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, tokenResult(p.UserID(), token))
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), AppVersion)
			return err
		},
	}
}

func tokenResult(userID string, token *momo.AccessToken) result {
	return result{
		UserID:      userID,
		AccessToken: token.Value,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	}
}
