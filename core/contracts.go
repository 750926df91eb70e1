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
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"
)

// JSONConvertible is implemented by values with a canonical extended JSON
// form. String must return the same text as ToJSONString.
type JSONConvertible interface {
	fmt.Stringer
	ToJSONString() (string, error)
	ToJSON() (map[string]any, error)
}

// ObjectWithID is implemented by values whose identity is assigned by a
// store. ID fails with ErrIdentityNotAssigned until the value is bound.
type ObjectWithID interface {
	ID() (string, error)
	Bound() bool
}

// LocalizedObject is implemented by values carrying text in more than one
// language.
type LocalizedObject interface {
	DefaultText() string
	Text(tag language.Tag) string
	Variants() map[language.Tag]string
}

// Entity is the contract every persisted type satisfies.
type Entity interface {
	JSONConvertible
	ObjectWithID
	json.Marshaler
	json.Unmarshaler
	Validate() error
}
