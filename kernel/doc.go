// Package kernel provides the default module host.
//
// A Kernel tracks which modules are loaded, loads batches of modules in
// order and gives each loading module a view of the DI container whose
// bindings are owned by that module. Modules loaded while another module is
// loading (its dependencies) are recorded with that module as their parent.
//
//	k := kernel.New(kernel.WithName("app"))
//	if err := k.Load(ctx, &store.Module{}, &api.Module{}); err != nil {
//		return err
//	}
//	for _, info := range k.Modules() {
//		fmt.Println(info.Order, info.ID)
//	}
//
// A module id is reserved before its Load runs, so a dependency cycle
// (a requires b requires a) ends with b seeing a as loaded and skipping it.
// Loading an id that is already loaded or reserved is an error; callers
// that may repeat modules should check HasModule first, which is what
// module.Dependencies does.
package kernel
