// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete catty configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend endpoints
	Services ServicesConfig `toml:"services" json:"services"`

	// Where sessions and credentials are kept
	Storage StorageConfig `toml:"storage" json:"storage"`

	Logging LoggingConfig `toml:"logging" json:"logging"`

	UI UIConfig `toml:"ui" json:"ui"`
}

// ServicesConfig locates the answer service and the content backend.
type ServicesConfig struct {
	// AnswerURL is the base URL of the answer service.
	AnswerURL string `toml:"answer_url" json:"answer_url"`
	// ContentURL is the base URL of the content backend (auth, history, topics).
	ContentURL string `toml:"content_url" json:"content_url"`

	AnswerPath  string `toml:"answer_path" json:"answer_path"`
	HistoryPath string `toml:"history_path" json:"history_path"`
	TopicsPath  string `toml:"topics_path" json:"topics_path"`
	LoginPath   string `toml:"login_path" json:"login_path"`
	MePath      string `toml:"me_path" json:"me_path"`

	// AnswerTimeoutSecs bounds one answer call. 0 waits indefinitely.
	AnswerTimeoutSecs int `toml:"answer_timeout_secs" json:"answer_timeout_secs"`
	// HistoryTimeoutSecs bounds one history post.
	HistoryTimeoutSecs int `toml:"history_timeout_secs" json:"history_timeout_secs"`
}

// StorageConfig selects the slot backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// Dir holds the slots. Empty means the config directory.
	Dir string `toml:"dir" json:"dir"`
	// SQLiteFile is the database name inside Dir for the sqlite backend.
	SQLiteFile string `toml:"sqlite_file" json:"sqlite_file"`
}

// LoggingConfig controls the structured log.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level"`
	// File receives JSON log lines. Empty means catty.log in the config directory.
	File string `toml:"file" json:"file"`
}

// UIConfig contains display settings.
type UIConfig struct {
	WordWrap         int    `toml:"word_wrap" json:"word_wrap"`
	GlamourStyle     string `toml:"glamour_style" json:"glamour_style"`
	ShowResponseTime bool   `toml:"show_response_time" json:"show_response_time"`
	// DefaultMode overrides the mode picked from the signed-in role when allowed.
	DefaultMode string `toml:"default_mode" json:"default_mode"`
}

// AnswerTimeout returns the answer timeout as a duration.
func (s ServicesConfig) AnswerTimeout() time.Duration {
	return time.Duration(s.AnswerTimeoutSecs) * time.Second
}

// HistoryTimeout returns the history timeout as a duration.
func (s ServicesConfig) HistoryTimeout() time.Duration {
	return time.Duration(s.HistoryTimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Services: ServicesConfig{
			AnswerURL:          "http://localhost:5000",
			ContentURL:         "http://localhost:1337",
			AnswerPath:         "/api/chat",
			HistoryPath:        "/api/histories",
			TopicsPath:         "/api/pertanyaan-chatbots",
			LoginPath:          "/api/auth/local",
			MePath:             "/api/users/me",
			AnswerTimeoutSecs:  0,
			HistoryTimeoutSecs: 30,
		},
		Storage: StorageConfig{
			Backend:    "file",
			SQLiteFile: "catty.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			WordWrap:         80,
			GlamourStyle:     "auto",
			ShowResponseTime: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the catty directory. CATTY_HOME overrides ~/.catty.
func ConfigDir() (string, error) {
	if dir := os.Getenv("CATTY_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".catty"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StateDir returns the directory holding the storage slots.
func (c *Config) StateDir() (string, error) {
	if c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	return ConfigDir()
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catty.log"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration. TOML is tried first, then JSON, then the
// built-in defaults. A .env file in the working directory or the config
// directory is loaded before environment overrides are applied; variables
// already set in the environment win over .env entries.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, err
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are decoded as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to load TOML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to load JSON config %s: %w", path, err)
	}
	return nil
}

func loadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if fileExists(path) {
			_ = godotenv.Load(path)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SetDefaults fills fields a config file left empty.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Services.AnswerPath == "" {
		c.Services.AnswerPath = d.Services.AnswerPath
	}
	if c.Services.HistoryPath == "" {
		c.Services.HistoryPath = d.Services.HistoryPath
	}
	if c.Services.TopicsPath == "" {
		c.Services.TopicsPath = d.Services.TopicsPath
	}
	if c.Services.LoginPath == "" {
		c.Services.LoginPath = d.Services.LoginPath
	}
	if c.Services.MePath == "" {
		c.Services.MePath = d.Services.MePath
	}
	if c.Services.HistoryTimeoutSecs == 0 {
		c.Services.HistoryTimeoutSecs = d.Services.HistoryTimeoutSecs
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.SQLiteFile == "" {
		c.Storage.SQLiteFile = d.Storage.SQLiteFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}
	if c.UI.GlamourStyle == "" {
		c.UI.GlamourStyle = d.UI.GlamourStyle
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# catty configuration file\n")
	buf.WriteString("# Environment variables CATTY_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for field, raw := range map[string]string{
		"services.answer_url":  c.Services.AnswerURL,
		"services.content_url": c.Services.ContentURL,
	} {
		if msg := checkBaseURL(raw); msg != "" {
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}

	for field, p := range map[string]string{
		"services.answer_path":  c.Services.AnswerPath,
		"services.history_path": c.Services.HistoryPath,
		"services.topics_path":  c.Services.TopicsPath,
		"services.login_path":   c.Services.LoginPath,
		"services.me_path":      c.Services.MePath,
	} {
		if !strings.HasPrefix(p, "/") || strings.Contains(p, "?") {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid path '%s', must start with / and carry no query", p)})
		}
	}

	if c.Services.AnswerTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "services.answer_timeout_secs", Message: "must not be negative"})
	}
	if c.Services.HistoryTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "services.history_timeout_secs", Message: "must not be negative"})
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite", c.Storage.Backend),
		})
	}
	if strings.ContainsAny(c.Storage.SQLiteFile, `/\`) {
		errs = append(errs, ValidationError{Field: "storage.sqlite_file", Message: "must be a file name, not a path"})
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
	}

	if c.UI.WordWrap < 20 || c.UI.WordWrap > 400 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: fmt.Sprintf("%d out of range 20-400", c.UI.WordWrap)})
	}
	if c.UI.DefaultMode != "" {
		if _, err := access.ParseMode(c.UI.DefaultMode); err != nil {
			errs = append(errs, ValidationError{Field: "ui.default_mode", Message: err.Error()})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	// Map iteration above is unordered
	sortErrors(errs)
	return errs
}

func checkBaseURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("invalid scheme '%s', must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return "missing host"
	}
	if u.RawQuery != "" {
		return "must not carry a query"
	}
	return ""
}

func sortErrors(errs ValidateErrors) {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - CATTY_ANSWER_URL: overrides services.answer_url
//   - CATTY_CONTENT_URL: overrides services.content_url
//   - CATTY_ANSWER_TIMEOUT: overrides services.answer_timeout_secs
//   - CATTY_STATE_DIR: overrides storage.dir
//   - CATTY_STORAGE_BACKEND: overrides storage.backend
//   - CATTY_LOG_LEVEL: overrides logging.level
//   - CATTY_LOG_FILE: overrides logging.file
//   - CATTY_MODE: overrides ui.default_mode
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CATTY_ANSWER_URL"); v != "" {
		c.Services.AnswerURL = v
	}
	if v := os.Getenv("CATTY_CONTENT_URL"); v != "" {
		c.Services.ContentURL = v
	}
	if v := os.Getenv("CATTY_ANSWER_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Services.AnswerTimeoutSecs = secs
		}
	}
	if v := os.Getenv("CATTY_STATE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("CATTY_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("CATTY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CATTY_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CATTY_MODE"); v != "" {
		c.UI.DefaultMode = v
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "services.answer_url").
// Keys match the TOML names.
func (c *Config) Get(key string) (interface{}, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTOMLName(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, fmt.Errorf("invalid key: %s", key)
}

func fieldByTOMLName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Keys returns every leaf key in dot notation, in declaration order.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
			if t.Field(i).Type.Kind() == reflect.Struct {
				walk(t.Field(i).Type, prefix+tag+".")
				continue
			}
			keys = append(keys, prefix+tag)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
