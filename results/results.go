// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package results implements the append-only global results CSV
// (spec.md 3, Measurement Row and 6, Results CSV), serializing whole-
// row appends across concurrently running trials.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"android/soong/mageec/elfsize"
)

// Sink appends measurement rows to a single CSV file. It is safe for
// concurrent use by multiple probe-phase goroutines: each Append call
// holds a mutex while it opens the file and appends all of its rows,
// so rows are never interleaved.
type Sink struct {
	mu   sync.Mutex
	path string
}

// Open returns a Sink appending to path, creating it if necessary.
func Open(path string) *Sink {
	return &Sink{path: path}
}

// Append writes one result row per measurement row in rows. Duplicate
// compilation ids across calls are permitted; downstream consumers
// deduplicate.
func (s *Sink) Append(rows []elfsize.Row) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening results file %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, r := range rows {
		record := []string{
			r.SourcePath,
			r.Kind,
			r.Name,
			"result",
			r.CompilationID,
			r.MetricName,
			strconv.FormatFloat(r.MetricValue, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing result row to %s: %w", s.path, err)
		}
	}
	w.Flush()
	return w.Error()
}
