// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Charles University, Faculty of Arts,
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

package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConf(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"modelPath": "model.bin",
		"predictTags": true,
		"wsconst": "DG",
		"scores": true
	}`), 0644))

	c, err := LoadConf(path)
	require.NoError(t, err)
	assert.Equal(t, "model.bin", c.ModelPath)
	assert.True(t, c.PredictTags)
	assert.Equal(t, "DG", c.Wsconst)
	assert.True(t, c.Scores)
	assert.False(t, c.NoNorm)
	assert.False(t, c.BufferedOut)
}

func TestLoadConfMissingFile(t *testing.T) {
	_, err := LoadConf(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateRequiresModelPath(t *testing.T) {
	var c RunConfig
	assert.Error(t, c.Validate())

	c.ModelPath = "model.bin"
	assert.NoError(t, c.Validate())
}
