// Package registry binds capability tokens to factories and resolves them into instances.
//
// The composition root declares one Token per capability, binds a Factory with a
// Lifecycle, and later resolves tokens into a working object graph:
//
//	var TokenClock = registry.NewToken("clock")
//
//	reg := registry.New()
//	reg.MustBind(TokenClock, func(registry.Resolver) (any, error) {
//	    return systemClock{}, nil
//	}, registry.Singleton)
//
//	clock, err := registry.ResolveAs[Clock](reg, TokenClock)
//
// Factories receive a Resolver that tracks the tokens currently being resolved on that
// chain. A factory must resolve its own dependencies through that Resolver, never through
// the outer Registry, otherwise cycles cannot be detected.
//
// Graphs are expected to be flat and acyclic. Resolution never performs I/O of its own.
package registry
