package session

import "context"

type storeContextKey struct{}

// WithStore adds a session store to the context.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// FromContext retrieves the session store from the context.
func FromContext(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(storeContextKey{}).(*Store)
	return store, ok
}

// MustFromContext retrieves the session store or panics. Only reachable
// from handlers mounted behind the session middleware, where absence is a
// wiring bug.
func MustFromContext(ctx context.Context) *Store {
	store, ok := FromContext(ctx)
	if !ok {
		panic("session: store not found in context")
	}
	return store
}
