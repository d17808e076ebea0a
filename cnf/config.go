// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2017 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cnf holds the JSON-loadable configuration for cmd/segmenter,
// letting a deployment pin its options in a file instead of repeating
// a long flag invocation (spec §6.4).
package cnf

import (
	"encoding/json"
	"fmt"
	"os"
)

// RunConfig bundles cmd/segmenter's resolved options. Every field
// mirrors a CLI flag; a flag explicitly set on the command line
// overrides the same field loaded from a RunConfig file.
type RunConfig struct {
	// ModelPath is the trained binary model file (--model).
	ModelPath string `json:"modelPath"`

	// PredictTags enables the tag scorer pass (--predict-tags).
	PredictTags bool `json:"predictTags,omitempty"`

	// Wsconst lists the word-shape boundary constraints to apply
	// after prediction (--wsconst), as single-letter codes: D, R, H,
	// T, K, O, G.
	Wsconst string `json:"wsconst,omitempty"`

	// NoNorm is accepted for CLI compatibility and is a deliberate
	// no-op: normalization filters are an external collaborator, not
	// part of this module.
	NoNorm bool `json:"noNorm,omitempty"`

	// Scores dumps the final per-boundary score array as JSON
	// alongside the tokenized output (--scores).
	Scores bool `json:"scores,omitempty"`

	// BufferedOut wraps stdout in a buffered writer, flushed once at
	// exit instead of per line (--buffered-out).
	BufferedOut bool `json:"bufferedOut,omitempty"`
}

// LoadConf reads a RunConfig from a JSON file at confPath.
func LoadConf(confPath string) (*RunConfig, error) {
	rawData, err := os.ReadFile(confPath)
	if err != nil {
		return nil, err
	}
	var conf RunConfig
	if err := json.Unmarshal(rawData, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate reports whether c has everything cmd/segmenter needs to
// run.
func (c *RunConfig) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("missing model path")
	}
	return nil
}
