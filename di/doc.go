// Package di provides the dependency injection container modules bind into.
//
// Bindings are keyed by string and can be lazy (constructed on first
// resolve and cached), eager (constructed at registration) or singletons
// (a pre-built instance). Every binding records the owner that registered
// it; a Scoped view tags registrations with an owner so that all of an
// owner's bindings can later be released together. The kernel gives each
// module a view scoped to the module's identity.
//
// # Registration
//
//	c.Register("store", func(c di.Container) (*Store, error) {
//	    log := di.MustResolve[*logger.Logger](c, "logger")
//	    return NewStore(log), nil
//	})
//
// # Resolution
//
//	store := di.MustResolve[*Store](c, "store")
package di
