// Package component defines lifecycle-managed infrastructure that modules
// can contribute to an application: a module registers a Component with
// the kernel's registry while it loads, and bootstrap starts every
// registered component once all root modules are loaded.
//
// Components start in registration order, which is module load order, and
// stop in reverse.
package component
