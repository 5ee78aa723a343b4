// Package module defines configuration modules and the dependency-aware
// loading pattern built on top of them.
//
// A Module binds services into a Kernel when loaded. A module that needs
// other modules owns a Dependencies value: while loading it registers
// each dependency candidate, and the candidate is kept only if the host
// does not already report a module with the same identity as loaded. Once
// registration is complete, FlushDependencies submits everything that was
// kept to the host in one batch, and skips the host entirely when nothing
// was kept.
//
//	func (GreeterModule) Load(ctx context.Context, k module.Kernel) error {
//	    deps := module.NewDependencies(k)
//	    deps.RegisterDependency(LoggingModule{})
//	    deps.RegisterDependency(StoreModule{})
//	    if _, err := deps.FlushDependencies(ctx); err != nil {
//	        return err
//	    }
//	    return k.Container().Register("greeter", NewGreeter)
//	}
//
// The duplicate check happens at registration time only. Two candidates
// with the same identity registered before the host has loaded either are
// both submitted; the host decides what a duplicate inside one batch
// means (the kernel package rejects it).
package module
