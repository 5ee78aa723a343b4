// Package inspect exposes a kernel's state over HTTP.
//
// The router lists loaded modules, their bindings and component health as
// JSON. Errors use the errors package response body:
//
//	{"error":{"code":"MODULE_NOT_LOADED","message":"Module x is not loaded.","retryable":false}}
//
// Server wraps the router in an h2c-capable http.Server and implements
// component.Component.
package inspect
