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
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const keyringService = "GoEditPDF"

// ErrNoPassword is returned by PasswordFor when nothing is stored for a document.
var ErrNoPassword = errors.New("no stored password")

// SecretStore abstracts the OS keychain so tests can swap in a map.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore with github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var secretStore SecretStore = osKeyring{}

// SetSecretStore replaces the keychain backend and returns the previous one.
func SetSecretStore(s SecretStore) SecretStore {
	old := secretStore
	secretStore = s
	return old
}

// passwordKey identifies a document by its absolute, cleaned path.
func passwordKey(docPath string) string {
	if abs, err := filepath.Abs(docPath); err == nil {
		return "pdf:" + filepath.Clean(abs)
	}
	return "pdf:" + filepath.Clean(docPath)
}

// PasswordFor returns the remembered password of an encrypted document.
func PasswordFor(docPath string) (string, error) {
	pw, err := secretStore.Get(keyringService, passwordKey(docPath))
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && pw == "") {
		return "", ErrNoPassword
	}
	return pw, err
}

// RememberPassword stores the password of an encrypted document in the keychain.
func RememberPassword(docPath, password string) error {
	if password == "" {
		return nil
	}
	return secretStore.Set(keyringService, passwordKey(docPath), password)
}

// ForgetPassword removes a stored password; a missing entry is not an error.
func ForgetPassword(docPath string) error {
	err := secretStore.Delete(keyringService, passwordKey(docPath))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
