package secret

import (
	"context"

	"github.com/reformlab/reformer/pkg/env"
)

// Config defines which providers should be available in a MultiResolver.
type Config struct {
	EnableEnv bool
	File      *FileConfig
	Vault     *VaultConfig
}

// NewConfiguredResolver builds a MultiResolver using the supplied provider
// configuration.
func NewConfiguredResolver(cfg Config) (*MultiResolver, error) {
	providers := map[string]Resolver{}

	if cfg.EnableEnv {
		providers[providerEnv] = NewEnvResolver()
	}

	if cfg.File != nil {
		providers[providerFile] = NewFileResolver(*cfg.File)
	}

	if cfg.Vault != nil {
		resolver, err := NewVaultResolver(*cfg.Vault)
		if err != nil {
			return nil, err
		}
		providers[providerVault] = resolver
	}

	return NewMultiResolver(providers), nil
}

// FromEnvironment builds the resolver the process configuration asks for.
// The env provider is always on; file and vault switch on when their
// settings are present.
func FromEnvironment(e env.Environment) (*MultiResolver, error) {
	cfg := Config{EnableEnv: true}

	if e.SecretFileDir != "" {
		cfg.File = &FileConfig{Dir: e.SecretFileDir}
	}
	if e.SecretVaultAddr != "" {
		cfg.Vault = &VaultConfig{
			Address:       e.SecretVaultAddr,
			Token:         e.SecretVaultToken,
			Namespace:     e.SecretVaultNamespace,
			CACertPath:    e.SecretVaultCACert,
			TLSSkipVerify: e.SecretVaultSkipVerify,
		}
	}

	return NewConfiguredResolver(cfg)
}

// ResolveValue passes plain values through and resolves secret://
// references, so configuration fields can hold either.
func ResolveValue(ctx context.Context, resolver Resolver, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}
	return resolver.Resolve(ctx, value)
}
