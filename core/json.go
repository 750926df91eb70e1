// Copyright 2025 Poiesic Systems
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


package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToJSONString encodes v in its canonical JSON form.
func ToJSONString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToJSON decodes the canonical JSON form of v into a generic mapping.
// Numbers are kept as json.Number so integers survive unchanged.
func ToJSON(v any) (map[string]any, error) {
	s, err := ToJSONString(v)
	if err != nil {
		return nil, err
	}
	return DecodeObject([]byte(s))
}

// DecodeObject decodes a JSON object, keeping numbers as json.Number.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// Stringify returns the canonical JSON form of v, or a marker carrying the
// encoding error.
func Stringify(v any) string {
	s, err := ToJSONString(v)
	if err != nil {
		return fmt.Sprintf("%%!(json error: %v)", err)
	}
	return s
}
