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

package manifest

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// WriteDebugSnapshot serializes m as a protobuf Struct and writes it
// to path as protojson. This mirrors the teacher's cmd/sbox use of a
// textproto manifest for its own sandboxed-command description; here
// it gives an operator a structured, diffable dump of what a trial's
// wrapper compilers reported, gated behind --debug.
func WriteDebugSnapshot(path string, m Manifest) error {
	fields := make(map[string]interface{}, len(m))
	for src, entry := range m {
		rec := map[string]interface{}{}
		if entry.Module != nil {
			rec["module"] = map[string]interface{}{
				"name": entry.Module.Name,
				"id":   entry.Module.ID,
			}
		}
		if len(entry.Functions) > 0 {
			funcs := make([]interface{}, len(entry.Functions))
			for i, fn := range entry.Functions {
				funcs[i] = map[string]interface{}{
					"name": fn.Name,
					"id":   fn.ID,
				}
			}
			rec["functions"] = funcs
		}
		fields[src] = rec
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("building manifest debug snapshot: %w", err)
	}

	data, err := protojson.MarshalOptions{Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling manifest debug snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest debug snapshot to %s: %w", path, err)
	}
	return nil
}
