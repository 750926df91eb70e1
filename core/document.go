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

// Document carries the store-assigned identity of an entity. The zero
// Document is detached; it becomes bound when an entity is decoded from a
// stored representation that carries an "_id" field.
type Document struct {
	id string
}

// ID returns the store key, or ErrIdentityNotAssigned for a detached value.
func (d Document) ID() (string, error) {
	if d.id == "" {
		return "", ErrIdentityNotAssigned
	}
	return d.id, nil
}

// Bound reports whether the value is backed by a stored record.
func (d Document) Bound() bool {
	return d.id != ""
}

func (d *Document) bind(id string) {
	d.id = id
}
