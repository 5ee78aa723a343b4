// Package config loads service configuration with Viper.
//
// A YAML file (found in the usual cmd/<service>/, config/ and working
// directory locations, or given explicitly) provides the base values; a
// .env file and the process environment override them. Environment
// variables carry a service prefix: for service "modkit",
// MODKIT_KERNEL_NAME overrides kernel.name.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("modkit", &cfg); err != nil { ... }
package config
