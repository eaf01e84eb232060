package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// statusCodePattern extracts the HTTP status from GoTrue errors ("response status code 401: ...").
var statusCodePattern = regexp.MustCompile(`status code (\d{3})`)

// SupabaseAuth is the subset of the GoTrue API used by SupabaseProvider.
type SupabaseAuth interface {
	// GetUser returns the user owning the access token.
	GetUser(token string) (*types.UserResponse, error)

	// AdminGetUser returns a user by id using the service role key.
	AdminGetUser(req types.AdminGetUserRequest) (*types.AdminGetUserResponse, error)
}

// gotrueAuth adapts a gotrue.Client to SupabaseAuth.
type gotrueAuth struct {
	client     gotrue.Client
	serviceKey string
}

func (g *gotrueAuth) GetUser(token string) (*types.UserResponse, error) {
	return g.client.WithToken(token).GetUser()
}

func (g *gotrueAuth) AdminGetUser(req types.AdminGetUserRequest) (*types.AdminGetUserResponse, error) {
	return g.client.WithToken(g.serviceKey).AdminGetUser(req)
}

// SupabaseProvider verifies Supabase access tokens with the project's GoTrue API.
type SupabaseProvider struct {
	auth SupabaseAuth
}

// NewSupabaseProvider creates a SupabaseProvider for the project at url, authenticated
// with the service role key.
func NewSupabaseProvider(url, serviceRoleKey string) (*SupabaseProvider, error) {
	client, err := supabase.NewClient(url, serviceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return NewSupabaseProviderWithAuth(&gotrueAuth{
		client:     client.Auth,
		serviceKey: serviceRoleKey,
	}), nil
}

// NewSupabaseProviderWithAuth creates a SupabaseProvider on top of an existing SupabaseAuth.
func NewSupabaseProviderWithAuth(auth SupabaseAuth) *SupabaseProvider {
	return &SupabaseProvider{auth: auth}
}

// Name returns "supabase".
func (s *SupabaseProvider) Name() string {
	return NameSupabase
}

// Verify resolves the user owning the access token.
func (s *SupabaseProvider) Verify(ctx context.Context, credential string) (*identityDomain.Claims, error) {
	resp, err := callWithContext(ctx, func() (*types.UserResponse, error) {
		return s.auth.GetUser(credential)
	})
	if err != nil {
		return nil, classifySupabaseError(ctx, err, false)
	}

	return &identityDomain.Claims{
		Subject: userSubject(resp.ID),
		Email:   resp.Email,
	}, nil
}

// GetBySubject looks the user up with the admin API. Supabase subjects are UUIDs, so any
// other subject is unknown.
func (s *SupabaseProvider) GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", subject, identityDomain.ErrSubjectUnknown)
	}

	resp, err := callWithContext(ctx, func() (*types.AdminGetUserResponse, error) {
		return s.auth.AdminGetUser(types.AdminGetUserRequest{UserID: id})
	})
	if err != nil {
		return nil, classifySupabaseError(ctx, err, true)
	}

	return &identityDomain.Profile{
		Subject:     userSubject(resp.ID),
		Email:       resp.Email,
		DisplayName: displayName(resp.UserMetadata),
		CreatedAt:   resp.CreatedAt,
	}, nil
}

// callWithContext runs call and returns early when ctx ends first. GoTrue calls do not
// accept a context.
func callWithContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := call()
		done <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// classifySupabaseError maps GoTrue failures onto the provider failure classes.
func classifySupabaseError(ctx context.Context, err error, lookup bool) error {
	if ctx.Err() != nil {
		return err
	}

	match := statusCodePattern.FindStringSubmatch(err.Error())
	if match == nil {
		return fmt.Errorf("%w: %w", identityDomain.ErrProviderUnreachable, err)
	}
	status, _ := strconv.Atoi(match[1])

	switch {
	case lookup && (status == 400 || status == 404 || status == 422):
		return fmt.Errorf("%w: %w", identityDomain.ErrSubjectUnknown, err)
	case !lookup && (status == 400 || status == 401 || status == 403 || status == 404 || status == 422):
		return fmt.Errorf("%w: %w", identityDomain.ErrCredentialRejected, err)
	default:
		return fmt.Errorf("%w: %w", identityDomain.ErrProviderUnreachable, err)
	}
}

func userSubject(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func displayName(metadata map[string]interface{}) string {
	for _, key := range []string{"full_name", "name", "display_name"} {
		if value, ok := metadata[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
