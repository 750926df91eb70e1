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
	"fmt"
	"unicode/utf8"
)

// ValidateLocalizedText validates a LocalizedText according to domain rules.
//
// Validation rules:
//   - English (the default text) must not be empty
//   - every variant must be valid UTF-8
func ValidateLocalizedText(text *LocalizedText) error {
	if text == nil {
		return fmt.Errorf("%w: text is nil", ErrInvalidEntity)
	}
	if text.English == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyDefaultText)
	}
	for _, v := range text.variants() {
		if !utf8.ValidString(v.text) {
			return fmt.Errorf("%w: %s text is not valid UTF-8", ErrInvalidEntity, v.tag)
		}
	}
	return nil
}

// ValidateUser validates a User.
//
// Validation rules:
//   - WorkingContext, when set, must be a declared context
//   - every platform link must name a declared platform and a non-empty id
//
// Names and language are optional.
func ValidateUser(user *User) error {
	if user == nil {
		return fmt.Errorf("%w: user is nil", ErrInvalidEntity)
	}
	if user.WorkingContext != "" && !user.WorkingContext.Valid() {
		return fmt.Errorf("%w: %w: working context %q", ErrInvalidEntity, ErrUnknownTag, user.WorkingContext)
	}
	for p, id := range user.platformIDs {
		if !p.Valid() {
			return fmt.Errorf("%w: %w: platform %q", ErrInvalidEntity, ErrUnknownTag, p)
		}
		if id == "" {
			return fmt.Errorf("%w: empty %s id", ErrInvalidEntity, p)
		}
	}
	return nil
}

// ValidateUnreadMessage validates an UnreadMessage.
//
// Validation rules:
//   - Recipient must not be empty
func ValidateUnreadMessage(msg *UnreadMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidEntity)
	}
	if msg.Recipient == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyRecipient)
	}
	return nil
}

// ValidateCacheEntry validates a CacheEntry.
//
// Validation rules:
//   - Key must not be empty
//   - Generation must not be negative
func ValidateCacheEntry(entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntity)
	}
	if entry.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyCacheKey)
	}
	if entry.Generation < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrNegativeGeneration)
	}
	return nil
}
