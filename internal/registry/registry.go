package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds the instance for a binding. Dependencies must be resolved through r.
type Factory func(r Resolver) (any, error)

// Resolver resolves tokens into instances.
type Resolver interface {
	Resolve(token Token) (any, error)
}

// binding is the registry record for one token. A rebinding creates a new record, so
// instances cached on the previous record are left untouched.
type binding struct {
	id        uint64
	token     Token
	factory   Factory
	lifecycle Lifecycle

	resolved bool
	instance any
}

// Registry maps tokens to bindings and owns every singleton instance it creates.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Token]*binding
	seq      uint64
	group    singleflight.Group
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		bindings: make(map[Token]*binding),
	}
}

// Bind registers factory for token, replacing any previous binding for the same token.
func (r *Registry) Bind(token Token, factory Factory, lifecycle Lifecycle) error {
	if factory == nil {
		return fmt.Errorf("bind %s: %w: nil factory", token, ErrInvalidBinding)
	}
	if !lifecycle.valid() {
		return fmt.Errorf("bind %s: %w: %s", token, ErrInvalidBinding, lifecycle)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.bindings[token] = &binding{
		id:        r.seq,
		token:     token,
		factory:   factory,
		lifecycle: lifecycle,
	}
	return nil
}

// MustBind is like Bind but panics on an invalid binding.
func (r *Registry) MustBind(token Token, factory Factory, lifecycle Lifecycle) {
	if err := r.Bind(token, factory, lifecycle); err != nil {
		panic(err)
	}
}

// Has reports whether token is bound.
func (r *Registry) Has(token Token) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bindings[token]
	return ok
}

// Tokens returns the bound tokens sorted by name.
func (r *Registry) Tokens() []Token {
	r.mu.RLock()
	tokens := make([]Token, 0, len(r.bindings))
	for token := range r.bindings {
		tokens = append(tokens, token)
	}
	r.mu.RUnlock()

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].name < tokens[j].name
	})
	return tokens
}

// Resolve returns the instance bound to token.
//
// Singleton bindings build their instance once and return it on every later call.
// Transient bindings build a new instance on every call. Resolving a token that is
// already being resolved on the same chain fails with ErrCyclicDependency.
func (r *Registry) Resolve(token Token) (any, error) {
	return r.resolve(token, nil)
}

// chain is the Resolver handed to factories. It carries the tokens in progress.
type chain struct {
	registry *Registry
	path     []Token
}

func (c *chain) Resolve(token Token) (any, error) {
	return c.registry.resolve(token, c.path)
}

func (r *Registry) resolve(token Token, path []Token) (any, error) {
	for _, inProgress := range path {
		if inProgress == token {
			return nil, fmt.Errorf("resolve %s: %w", formatPath(append(path, token)), ErrCyclicDependency)
		}
	}

	r.mu.RLock()
	b, ok := r.bindings[token]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", token, ErrUnboundCapability)
	}

	next := &chain{registry: r, path: extendPath(path, token)}

	if b.lifecycle == Transient {
		return r.construct(b, next)
	}

	if instance, ok := r.cached(b); ok {
		return instance, nil
	}

	key := b.token.name + "#" + strconv.FormatUint(b.id, 10)
	instance, err, _ := r.group.Do(key, func() (any, error) {
		if instance, ok := r.cached(b); ok {
			return instance, nil
		}

		instance, err := r.construct(b, next)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		b.instance = instance
		b.resolved = true
		r.mu.Unlock()

		return instance, nil
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *Registry) cached(b *binding) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return b.instance, b.resolved
}

// construct runs the factory and turns panics and nil results into binding errors.
func (r *Registry) construct(b *binding, resolver Resolver) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance = nil
			err = fmt.Errorf("resolve %s: %w: factory panicked: %v", b.token, ErrInvalidBinding, rec)
		}
	}()

	instance, err = b.factory(resolver)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", b.token, err)
	}
	if instance == nil {
		return nil, fmt.Errorf("resolve %s: %w: factory returned nil", b.token, ErrInvalidBinding)
	}
	return instance, nil
}

// ResolveAs resolves token and asserts the instance to T.
func ResolveAs[T any](r Resolver, token Token) (T, error) {
	var zero T

	instance, err := r.Resolve(token)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("resolve %s: %w: got %T", token, ErrCapabilityTypeMismatch, instance)
	}
	return typed, nil
}

func extendPath(path []Token, token Token) []Token {
	next := make([]Token, len(path), len(path)+1)
	copy(next, path)
	return append(next, token)
}

func formatPath(path []Token) string {
	names := make([]string, len(path))
	for i, token := range path {
		names[i] = token.name
	}
	return strings.Join(names, " -> ")
}
