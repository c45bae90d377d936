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
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nlnwa/gzwarc"
)

const (
	envSnippetSize = "GZWARC_SNIPPET_SIZE"
	envWarcCheck   = "GZWARC_WARC_CHECK"
)

// envDefaults holds the flag defaults derived from the environment, applied
// before explicit command-line flags so that a flag always wins.
type envDefaults struct {
	snippetSize int
	warcCheck   bool
}

// loadEnvDefaults loads a .env file, if present, then reads
// GZWARC_SNIPPET_SIZE and GZWARC_WARC_CHECK from the environment. A missing
// .env file is not an error; malformed values in either source are logged
// and ignored, falling back to the library default.
func loadEnvDefaults(log *logrus.Logger) envDefaults {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Debug("not loading .env")
	}

	d := envDefaults{snippetSize: gzwarc.DefaultSnippetWidth}

	if v := os.Getenv(envSnippetSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.WithField("value", v).Warnf("ignoring invalid %s", envSnippetSize)
		} else {
			d.snippetSize = n
		}
	}

	if v := os.Getenv(envWarcCheck); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.WithField("value", v).Warnf("ignoring invalid %s", envWarcCheck)
		} else {
			d.warcCheck = b
		}
	}

	return d
}
