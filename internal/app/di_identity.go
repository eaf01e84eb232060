package app

import (
	"fmt"
	"log/slog"

	"github.com/allisson/warden/internal/config"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	identityHTTP "github.com/allisson/warden/internal/identity/http"
	"github.com/allisson/warden/internal/identity/provider"
	identityRepository "github.com/allisson/warden/internal/identity/repository"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	"github.com/allisson/warden/internal/metrics"
	"github.com/allisson/warden/internal/registry"
)

// IdentityProvider returns the configured identity provider.
func (c *Container) IdentityProvider() (identityUseCase.IdentityProvider, error) {
	return registry.ResolveAs[identityUseCase.IdentityProvider](c.registry, TokenIdentityProvider)
}

// PrincipalRepository returns the principal directory for the configured database driver.
func (c *Container) PrincipalRepository() (identityUseCase.PrincipalRepository, error) {
	return registry.ResolveAs[identityUseCase.PrincipalRepository](c.registry, TokenPrincipalRepository)
}

// PrincipalVerifier returns the principal verifier.
func (c *Container) PrincipalVerifier() (identityUseCase.PrincipalVerifier, error) {
	return registry.ResolveAs[identityUseCase.PrincipalVerifier](c.registry, TokenPrincipalVerifier)
}

// ProfileUseCase returns the principal directory use case.
func (c *Container) ProfileUseCase() (identityUseCase.ProfileUseCase, error) {
	return registry.ResolveAs[identityUseCase.ProfileUseCase](c.registry, TokenProfileUseCase)
}

// PrincipalHandler returns a new principal handler on every call.
func (c *Container) PrincipalHandler() (*identityHTTP.PrincipalHandler, error) {
	return registry.ResolveAs[*identityHTTP.PrincipalHandler](c.registry, TokenPrincipalHandler)
}

// bindIdentity binds the identity module.
func (c *Container) bindIdentity() {
	c.registry.MustBind(TokenPrincipalRepository, c.newPrincipalRepository, registry.Singleton)
	c.registry.MustBind(TokenIdentityProvider, c.newIdentityProvider, registry.Singleton)
	c.registry.MustBind(TokenPrincipalVerifier, c.newPrincipalVerifier, registry.Singleton)

	c.registry.MustBind(TokenProfileUseCase, func(r registry.Resolver) (any, error) {
		txManager, err := registry.ResolveAs[database.TxManager](r, TokenTxManager)
		if err != nil {
			return nil, err
		}
		repo, err := registry.ResolveAs[identityUseCase.PrincipalRepository](r, TokenPrincipalRepository)
		if err != nil {
			return nil, err
		}
		return identityUseCase.NewProfileUseCase(txManager, repo), nil
	}, registry.Singleton)

	c.registry.MustBind(TokenPrincipalHandler, func(r registry.Resolver) (any, error) {
		verifier, err := registry.ResolveAs[identityUseCase.PrincipalVerifier](r, TokenPrincipalVerifier)
		if err != nil {
			return nil, err
		}
		profiles, err := registry.ResolveAs[identityUseCase.ProfileUseCase](r, TokenProfileUseCase)
		if err != nil {
			return nil, err
		}
		logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
		if err != nil {
			return nil, err
		}
		return identityHTTP.NewPrincipalHandler(verifier, profiles, logger), nil
	}, registry.Transient)
}

func (c *Container) newPrincipalRepository(r registry.Resolver) (any, error) {
	manager, err := registry.ResolveAs[*database.Manager](r, TokenDatabaseManager)
	if err != nil {
		return nil, err
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLPrincipalRepository(manager), nil
	case "postgres":
		return identityRepository.NewPostgreSQLPrincipalRepository(manager), nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured,
			fmt.Sprintf("unsupported database driver %q", c.config.DBDriver))
	}
}

func (c *Container) newIdentityProvider(r registry.Resolver) (any, error) {
	switch c.config.IdentityProvider {
	case config.IdentityProviderSupabase:
		return provider.NewSupabaseProvider(c.config.SupabaseURL, c.config.SupabaseServiceRoleKey)

	case config.IdentityProviderJWKS:
		repo, err := registry.ResolveAs[identityUseCase.PrincipalRepository](r, TokenPrincipalRepository)
		if err != nil {
			return nil, err
		}
		logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
		if err != nil {
			return nil, err
		}
		return provider.NewJWKSProvider(provider.JWKSConfig{
			JWKSURL:   c.config.JWKSURL,
			Issuer:    c.config.JWTIssuer,
			Audience:  c.config.JWTAudience,
			ClockSkew: c.config.JWTClockSkew,
			CacheTTL:  c.config.JWKSCacheTTL,
		}, repo, logger), nil

	case config.IdentityProviderStatic:
		credentials, err := provider.ParseStaticCredentials(c.config.IdentityStaticCredentials)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMisconfigured, err.Error())
		}
		return provider.NewStaticProvider(credentials), nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured,
			fmt.Sprintf("unsupported identity provider %q", c.config.IdentityProvider))
	}
}

func (c *Container) newPrincipalVerifier(r registry.Resolver) (any, error) {
	identityProvider, err := registry.ResolveAs[identityUseCase.IdentityProvider](r, TokenIdentityProvider)
	if err != nil {
		return nil, err
	}
	logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
	if err != nil {
		return nil, err
	}
	businessMetrics, err := registry.ResolveAs[metrics.BusinessMetrics](r, TokenBusinessMetrics)
	if err != nil {
		return nil, err
	}

	verifier := identityUseCase.NewPrincipalVerifier(identityProvider, identityUseCase.BreakerConfig{
		MaxRequests:         c.config.IdentityBreakerMaxRequests,
		Interval:            c.config.IdentityBreakerInterval,
		Timeout:             c.config.IdentityBreakerTimeout,
		ConsecutiveFailures: c.config.IdentityBreakerFailures,
		CallTimeout:         c.config.IdentityTimeout,
	}, logger)

	return identityUseCase.NewPrincipalVerifierWithMetrics(verifier, businessMetrics), nil
}
