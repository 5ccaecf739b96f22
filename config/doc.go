// Package config loads docflow configuration.
//
// LoadConfig resolves a config.yml and an optional .env file, binds
// environment variables and unmarshals the result with Viper into any
// struct carrying mapstructure tags. Load does the same for AppConfig and
// then applies defaults and validates every section.
//
// # Usage
//
//	cfg, err := config.Load("docflow", config.WithConfigFile("config.yml"))
//
// Environment variables override file values using underscore-separated
// paths (e.g. PIPELINE_TARGET_LANGUAGE=fr or BATCH_CONCURRENCY=8).
package config
