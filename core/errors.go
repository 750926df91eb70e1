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

import "errors"

// Identity and configuration errors
var (
	// ErrIdentityNotAssigned indicates an identity read on a value that has
	// not been inserted into a store yet.
	ErrIdentityNotAssigned = errors.New("identity not assigned")

	// ErrMissingConfiguration indicates that a required externally supplied
	// value is absent.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrUnknownTag indicates a string that does not name a member of an
	// enumeration.
	ErrUnknownTag = errors.New("unknown tag")
)

// Domain validation errors
var (
	// ErrInvalidEntity indicates an entity failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrEmptyDefaultText indicates a LocalizedText without its default text.
	ErrEmptyDefaultText = errors.New("default text cannot be empty")

	// ErrEmptyRecipient indicates an UnreadMessage without a recipient.
	ErrEmptyRecipient = errors.New("recipient cannot be empty")

	// ErrEmptyCacheKey indicates a CacheEntry without a key.
	ErrEmptyCacheKey = errors.New("cache key cannot be empty")

	// ErrNegativeGeneration indicates a CacheEntry with a negative generation.
	ErrNegativeGeneration = errors.New("cache generation cannot be negative")
)
