/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package action

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	applog "goeditpdf/internal/log"
)

//go:embed script.schema.json
var scriptSchema []byte

// Script is a list of actions run in order against one document.
type Script struct {
	Actions []Action `json:"actions"`
}

// SchemaError lists the schema violations of a script.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid action script: " + strings.Join(e.Problems, "; ")
}

// ParseScript validates data against the embedded schema and decodes it.
func ParseScript(data []byte) (Script, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(scriptSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Script{}, fmt.Errorf("validate action script: %w", err)
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, e := range result.Errors() {
			se.Problems = append(se.Problems, e.String())
		}
		return Script{}, se
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode action script: %w", err)
	}
	return s, nil
}

// LoadScript reads a script file. Relative paths inside it are resolved
// against the directory of the script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read action script: %w", err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, err
	}
	base := filepath.Dir(path)
	for i := range s.Actions {
		if p := s.Actions[i].Path; p != "" && !filepath.IsAbs(p) {
			s.Actions[i].Path = filepath.Join(base, p)
		}
	}
	return s, nil
}

// Run dispatches every action in order and stops at the first error.
func (s Script) Run(t Target) error {
	l := applog.WithComponent("action")
	for i, a := range s.Actions {
		l.Debug("dispatch", slog.Int("step", i+1), slog.String("action", string(a.Kind)))
		if err := Dispatch(t, a); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, a.Kind, err)
		}
	}
	l.Info("action script finished", slog.Int("steps", len(s.Actions)))
	return nil
}
