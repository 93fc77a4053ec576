// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and logger setup for catty.
//
// Supports both TOML and JSON configuration formats, with defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - ServicesConfig: Answer service and content backend endpoints
//   - StorageConfig: Slot backend selection
//   - LoggingConfig: Level and JSON log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CATTY_*), including those from .env
//   - ~/.catty/config.toml
//   - ~/.catty/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logger, closeLog := cfg.SetupLogger(os.Stderr)
//	defer closeLog()
package config
