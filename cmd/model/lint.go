package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/reformlab/reformer/internal/secret"
	"github.com/spf13/cobra"
)

var (
	lintPaths           []string
	lintCheckSecrets    bool
	lintSecretFileDir   string
	lintVaultAddress    string
	lintVaultToken      string
	lintVaultNamespace  string
	lintVaultCACert     string
	lintVaultSkipVerify bool
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate flowsheet definition manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := collectDefinitions(lintPaths)
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No flowsheet definitions found.")
			return nil
		}

		for _, def := range defs {
			if err := def.Validate(); err != nil {
				return fmt.Errorf("model %s: %w", def.Metadata.Name, err)
			}
		}

		if !lintCheckSecrets {
			fmt.Fprintf(cmd.OutOrStdout(), "Validated %d model definition(s)\n", len(defs))
			return nil
		}

		resolver, err := buildLintResolver()
		if err != nil {
			return err
		}

		// Annotation values may carry secret:// references used by the
		// registry sync; resolve them so broken refs fail here instead
		// of at sync time.
		var failures []string
		for _, def := range defs {
			for key, value := range def.Metadata.Annotations {
				if !secret.IsReference(value) {
					continue
				}
				if _, err := resolver.Resolve(cmd.Context(), value); err != nil {
					failures = append(failures, fmt.Sprintf("%s: annotation %s: %v", def.Metadata.Name, key, err))
				}
			}
		}
		if len(failures) > 0 {
			return fmt.Errorf("secret checks failed:\n%s", strings.Join(failures, "\n"))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Validated %d model definition(s) with secrets\n", len(defs))
		return nil
	},
}

func init() {
	lintCmd.Flags().StringSliceVarP(&lintPaths, "path", "p", nil, "Paths to flowsheet definition files or directories (default: current directory)")
	lintCmd.Flags().BoolVar(&lintCheckSecrets, "check-secrets", false, "Resolve secret:// references using configured providers")
	lintCmd.Flags().StringVar(&lintSecretFileDir, "secret-file-dir", os.Getenv("REFORMER_SECRET_FILE_DIR"), "Directory holding file-provider secrets")
	lintCmd.Flags().StringVar(&lintVaultAddress, "vault-address", os.Getenv("VAULT_ADDR"), "Vault server address for secret resolution")
	lintCmd.Flags().StringVar(&lintVaultToken, "vault-token", os.Getenv("VAULT_TOKEN"), "Vault token for secret resolution")
	lintCmd.Flags().StringVar(&lintVaultNamespace, "vault-namespace", os.Getenv("VAULT_NAMESPACE"), "Vault namespace for secret resolution")
	lintCmd.Flags().StringVar(&lintVaultCACert, "vault-ca-cert", os.Getenv("VAULT_CACERT"), "Vault CA certificate path")
	lintCmd.Flags().BoolVar(&lintVaultSkipVerify, "vault-skip-verify", envBool("VAULT_SKIP_VERIFY", false), "Disable TLS verification when connecting to Vault")

	Cmd.AddCommand(lintCmd)
}

func buildLintResolver() (*secret.MultiResolver, error) {
	cfg := secret.Config{EnableEnv: true}

	if dir := firstNonEmpty(lintSecretFileDir, os.Getenv("REFORMER_SECRET_FILE_DIR")); dir != "" {
		cfg.File = &secret.FileConfig{Dir: dir}
	}

	if addr := firstNonEmpty(lintVaultAddress, os.Getenv("VAULT_ADDR")); addr != "" {
		cfg.Vault = &secret.VaultConfig{
			Address:       addr,
			Token:         firstNonEmpty(lintVaultToken, os.Getenv("VAULT_TOKEN")),
			Namespace:     firstNonEmpty(lintVaultNamespace, os.Getenv("VAULT_NAMESPACE")),
			CACertPath:    firstNonEmpty(lintVaultCACert, os.Getenv("VAULT_CACERT")),
			TLSSkipVerify: lintVaultSkipVerify || envBool("VAULT_SKIP_VERIFY", false),
		}
	}

	return secret.NewConfiguredResolver(cfg)
}

func envBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
