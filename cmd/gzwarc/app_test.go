// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"compress/flate"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlnwa/gzwarc/internal/gzfixture"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.warc.gz")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestAppAnalyzesMultiMemberFile(t *testing.T) {
	data := gzfixture.Concat(
		gzfixture.Member([]byte("record one"), flate.DefaultCompression),
		gzfixture.Member([]byte("record two"), flate.DefaultCompression),
	)
	path := writeFixture(t, data)

	var out bytes.Buffer
	app := newGzwarcApp(testLogger())
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"gzwarc", path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "multiCompressed")
}

func TestAppPrintsJSONReport(t *testing.T) {
	data := gzfixture.Member([]byte("one record"), flate.DefaultCompression)
	path := writeFixture(t, data)

	var out bytes.Buffer
	app := newGzwarcApp(testLogger())
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"gzwarc", "--json", path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"status": "singleCompressed"`)
}

func TestAppWarcCheckColumn(t *testing.T) {
	content := "WARC/1.0\r\nContent-Length: 5\r\n\r\nhello\r\n\r\n"
	data := gzfixture.Member([]byte(content), flate.DefaultCompression)
	path := writeFixture(t, data)

	var out bytes.Buffer
	app := newGzwarcApp(testLogger())
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"gzwarc", "--warc-check", path})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out.String()), "warc")
}

func TestAppNonexistentFileReturnsError(t *testing.T) {
	var out bytes.Buffer
	app := newGzwarcApp(testLogger())
	app.Writer = &out
	app.ErrWriter = &out
	// Unset ExitErrHandler so Run returns the error instead of calling
	// cli.OsExiter (which would terminate the test process).
	app.ExitErrHandler = nil

	err := app.Run([]string{"gzwarc", "/nonexistent/path.gz"})
	assert.Error(t, err)
}
