// Package version reports the build version of a modkit binary.
//
// Values are set at link time, falling back to the VCS data Go embeds:
//
//	go build -ldflags "-X github.com/kbukum/modkit/version.Version=1.0.0"
package version
