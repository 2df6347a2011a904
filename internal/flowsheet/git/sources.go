package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/internal/secret"
	"github.com/reformlab/reformer/pkg/env"
	"github.com/reformlab/reformer/pkg/log"
	"golang.org/x/sync/errgroup"
)

// SourceFromConfig converts an environment-sourced registry entry into a
// Source ready for syncing.
func SourceFromConfig(cfg env.RegistrySourceConfig, resolver secret.Resolver) (Source, error) {
	if cfg.IsZero() {
		return Source{}, errors.New("git source url is required")
	}

	src := Source{
		URL:      cfg.URL,
		Ref:      cfg.Ref,
		Path:     cfg.Path,
		Globs:    cfg.Globs,
		SourceID: cfg.SourceID,
		LocalDir: cfg.LocalDir,
		Resolver: resolver,
	}

	if cfg.Auth != nil {
		src.Auth = &BasicAuth{
			Username:    cfg.Auth.Username,
			Password:    cfg.Auth.Password,
			UsernameRef: cfg.Auth.UsernameRef,
			PasswordRef: cfg.Auth.PasswordRef,
		}
	}

	if cfg.SSH != nil {
		src.SSH = &SSHAuth{
			Username:        cfg.SSH.Username,
			UsernameRef:     cfg.SSH.UsernameRef,
			PrivateKey:      cfg.SSH.PrivateKey,
			PrivateKeyRef:   cfg.SSH.PrivateKeyRef,
			Passphrase:      cfg.SSH.Passphrase,
			PassphraseRef:   cfg.SSH.PassphraseRef,
			KnownHosts:      cfg.SSH.KnownHosts,
			KnownHostsRef:   cfg.SSH.KnownHostsRef,
			KnownHostsPath:  cfg.SSH.KnownHostsPath,
			KnownHostsPaths: cfg.SSH.KnownHostsPaths,
		}
	}

	return src, nil
}

// WatchAll runs a Watch loop per configured registry source and blocks until
// all loops finish or one fails.
func WatchAll(ctx context.Context, importer *flowsheet.Importer, sources env.RegistrySources, defaultInterval time.Duration, defaultOnce bool, resolver secret.Resolver) error {
	if len(sources) == 0 {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for i, cfg := range sources {
		src, err := SourceFromConfig(cfg, resolver)
		if err != nil {
			return fmt.Errorf("model git source %d: %w", i, err)
		}

		interval, err := cfg.IntervalDuration(defaultInterval)
		if err != nil {
			return fmt.Errorf("model git source %d: %w", i, err)
		}

		opts := WatchOptions{
			Source:   src,
			Interval: interval,
			Once:     cfg.OnceValue(defaultOnce),
		}

		group.Go(func() error {
			log.Info("watching model registry source",
				"url", opts.Source.URL,
				"ref", opts.Source.Ref,
				"interval", opts.Interval,
				"once", opts.Once,
			)
			return Watch(groupCtx, importer, opts)
		})
	}

	return group.Wait()
}
