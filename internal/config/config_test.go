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
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

// isolate points the config file into a temp dir so tests never touch the user's file.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	return path
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	isolate(t)
	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path == "" {
		t.Fatal("expected resolved path")
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.General.BackupOnSave = true
	cfg.Render.PreviewDPI = 110
	cfg.Cache.MaxBytes = 1 << 20
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("render:\n  preview_dpi: 96\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.PreviewDPI != 96 {
		t.Fatalf("PreviewDPI = %v", cfg.Render.PreviewDPI)
	}
	if !cfg.Cache.Enabled || !cfg.General.RememberPasswords || cfg.Render.ThumbnailSize != 160 {
		t.Fatalf("missing keys should keep defaults: %+v", cfg)
	}
}

func TestMalformedFileReportsErrorWithDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("render: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Render.PreviewDPI != Defaults().Render.PreviewDPI {
		t.Fatalf("expected defaults alongside the error, got %+v", cfg.Render)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPreviewDPI, "150")
	t.Setenv(EnvThumbnailSize, "64")
	t.Setenv(EnvCacheEnabled, "off")
	t.Setenv(EnvCacheDir, "/tmp/gep-cache")
	t.Setenv(EnvCacheMaxBytes, "4096")
	t.Setenv(EnvBackupOnSave, "yes")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "1")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.PreviewDPI != 150 || cfg.Render.ThumbnailSize != 64 {
		t.Fatalf("render overrides not applied: %+v", cfg.Render)
	}
	if cfg.Cache.Enabled || cfg.Cache.Dir != "/tmp/gep-cache" || cfg.Cache.MaxBytes != 4096 {
		t.Fatalf("cache overrides not applied: %+v", cfg.Cache)
	}
	if !cfg.General.BackupOnSave || cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("general/logging overrides not applied: %+v %+v", cfg.General, cfg.Logging)
	}
}

func TestInvalidNumericEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPreviewDPI, "-3")
	t.Setenv(EnvCacheMaxBytes, "lots")
	cfg, _, _ := Load()
	if cfg.Render.PreviewDPI != 72 || cfg.Cache.MaxBytes != 256<<20 {
		t.Fatalf("invalid env values must be ignored: %+v", cfg)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	t.Setenv(EnvCacheDir, "/x")
	if name, ok := EnvOverrideFor("cache.dir"); !ok || name != EnvCacheDir {
		t.Fatalf("EnvOverrideFor(cache.dir) = %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("render.preview_dpi"); ok {
		t.Fatal("preview_dpi is not overridden")
	}
	if _, ok := EnvOverrideFor("nope"); ok {
		t.Fatal("unknown key reported as overridden")
	}
}

func TestMergeCopiesBooleansFromFile(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.RememberPasswords = false
	src.Cache.Enabled = false
	src.Logging.Format = " JSON "
	mergeInto(&dst, &src)
	if dst.General.RememberPasswords || dst.Cache.Enabled || dst.Logging.Format != "json" {
		t.Fatalf("merge mismatch: %+v", dst)
	}
}

func TestCacheDirExplicit(t *testing.T) {
	dir, err := CacheConfig{Dir: "/var/cache/x"}.CacheDir()
	if err != nil || dir != "/var/cache/x" {
		t.Fatalf("CacheDir = %q, %v", dir, err)
	}
}

type memSecrets map[string]string

func (m memSecrets) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (m memSecrets) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memSecrets) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

func TestPasswordStore(t *testing.T) {
	mem := memSecrets{}
	old := SetSecretStore(mem)
	t.Cleanup(func() { SetSecretStore(old) })

	doc := filepath.Join(t.TempDir(), "secret.pdf")
	if _, err := PasswordFor(doc); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
	if err := RememberPassword(doc, "hunter2"); err != nil {
		t.Fatalf("RememberPassword: %v", err)
	}
	// same document through a different spelling of the path
	pw, err := PasswordFor(filepath.Join(filepath.Dir(doc), ".", "secret.pdf"))
	if err != nil || pw != "hunter2" {
		t.Fatalf("PasswordFor = %q, %v", pw, err)
	}
	if err := ForgetPassword(doc); err != nil {
		t.Fatalf("ForgetPassword: %v", err)
	}
	if err := ForgetPassword(doc); err != nil {
		t.Fatalf("second ForgetPassword should be a no-op: %v", err)
	}
	if _, err := PasswordFor(doc); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword after forget, got %v", err)
	}
	if err := RememberPassword(doc, ""); err != nil || len(mem) != 0 {
		t.Fatalf("empty password must not be stored")
	}
}
