/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user configuration persisted as YAML in the user scope.
// Environment variables override file values at runtime and are never written back.
// Passwords for encrypted documents are not part of it; they live in the OS keychain.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Render        RenderConfig  `yaml:"render"`
	Cache         CacheConfig   `yaml:"cache"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	Theme             string `yaml:"theme"` // "system" | "light" | "dark"
	BackupOnSave      bool   `yaml:"backup_on_save"`
	RememberPasswords bool   `yaml:"remember_passwords"`
}

type RenderConfig struct {
	PreviewDPI    float64 `yaml:"preview_dpi"`
	ThumbnailSize int     `yaml:"thumbnail_size"`
}

type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

const currentConfigVersion = 1

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: currentConfigVersion,
		General:       GeneralConfig{Theme: "system", BackupOnSave: false, RememberPasswords: true},
		Render:        RenderConfig{PreviewDPI: 72, ThumbnailSize: 160},
		Cache:         CacheConfig{Enabled: true, Dir: "", MaxBytes: 256 << 20},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvPreviewDPI    = "GEP_PREVIEW_DPI"
	EnvThumbnailSize = "GEP_THUMBNAIL_SIZE"
	EnvCacheEnabled  = "GEP_CACHE_ENABLED"
	EnvCacheDir      = "GEP_CACHE_DIR"
	EnvCacheMaxBytes = "GEP_CACHE_MAX_BYTES"
	EnvBackupOnSave  = "GEP_BACKUP_ON_SAVE"
	EnvConfigFile    = "GEP_CONFIG"
	// logging, shared with internal/log
	EnvLogLevel  = "GEP_LOG_LEVEL"
	EnvLogFormat = "GEP_LOG_FORMAT"
	EnvLogSource = "GEP_LOG_SOURCE"
	EnvLogFile   = "GEP_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GEP_CONFIG wins if set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoEditPDF")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoEditPDF")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "goeditpdf")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "goeditpdf")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// CacheDir resolves the preview cache directory, falling back to the user cache dir.
func (c CacheConfig) CacheDir() (string, error) {
	if strings.TrimSpace(c.Dir) != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "goeditpdf"), nil
}

// Load reads the user config file (if present) over the defaults and applies
// environment overrides. It returns the path it read from. A malformed file is
// reported as an error together with the usable defaults.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, "", err
	}
	data, rerr := os.ReadFile(path)
	switch {
	case rerr == nil:
		// start from defaults so keys missing in the file keep their default
		fileCfg := Defaults()
		if uerr := yaml.Unmarshal(data, &fileCfg); uerr != nil {
			applyEnvOverrides(&cfg)
			return cfg, path, fmt.Errorf("parse %s: %w", path, uerr)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(rerr, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, path, fmt.Errorf("read %s: %w", path, rerr)
	}
	applyEnvOverrides(&cfg)
	return cfg, path, nil
}

// Save writes cfg as YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Theme); s != "" {
		dst.General.Theme = strings.ToLower(s)
	}
	// booleans are taken from the file as-is so user preferences persist
	dst.General.BackupOnSave = src.General.BackupOnSave
	dst.General.RememberPasswords = src.General.RememberPasswords
	if src.Render.PreviewDPI > 0 {
		dst.Render.PreviewDPI = src.Render.PreviewDPI
	}
	if src.Render.ThumbnailSize > 0 {
		dst.Render.ThumbnailSize = src.Render.ThumbnailSize
	}
	dst.Cache.Enabled = src.Cache.Enabled
	if s := strings.TrimSpace(src.Cache.Dir); s != "" {
		dst.Cache.Dir = s
	}
	if src.Cache.MaxBytes > 0 {
		dst.Cache.MaxBytes = src.Cache.MaxBytes
	}
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPreviewDPI)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Render.PreviewDPI = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvThumbnailSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.ThumbnailSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheEnabled)); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		cfg.Cache.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheMaxBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Cache.MaxBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackupOnSave)); v != "" {
		cfg.General.BackupOnSave = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"render.preview_dpi":     EnvPreviewDPI,
	"render.thumbnail_size":  EnvThumbnailSize,
	"cache.enabled":          EnvCacheEnabled,
	"cache.dir":              EnvCacheDir,
	"cache.max_bytes":        EnvCacheMaxBytes,
	"general.backup_on_save": EnvBackupOnSave,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field (dotted YAML key) is
// currently overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
