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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/agentstore/core"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const idField = "_id"

// MarshalEntity serializes an entity to its stored form.
func MarshalEntity(e core.Entity) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalEntity deserializes a stored document into a new entity.
func UnmarshalEntity[T any, PE EntityPtr[T]](data []byte) (PE, error) {
	e := PE(new(T))
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return e, nil
}

// DocumentID returns the "_id" of a stored document, or "" when it has none.
func DocumentID(doc []byte) string {
	return gjson.GetBytes(doc, idField).String()
}

// StampID sets the "_id" of a document.
func StampID(doc []byte, id string) ([]byte, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: document is not valid JSON", ErrSerializationFailed)
	}
	out, err := sjson.SetBytes(doc, idField, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return out, nil
}
