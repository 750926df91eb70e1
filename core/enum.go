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


// Package core holds the entity model shared by every storage backend:
// the capability contracts entities satisfy, the entities themselves, the
// small enumerations they reference, and their validation rules.
package core

import (
	"fmt"
	"slices"
	"strings"
)

// ChatPlatform tags a messaging channel.
type ChatPlatform string

const (
	Telegram          ChatPlatform = "telegram"
	FacebookMessenger ChatPlatform = "facebook_messenger"
	CustomChat        ChatPlatform = "custom_chat"
)

var chatPlatforms = []ChatPlatform{Telegram, FacebookMessenger, CustomChat}

// ChatPlatformValues lists every ChatPlatform in declaration order.
func ChatPlatformValues() []ChatPlatform {
	return slices.Clone(chatPlatforms)
}

// ParseChatPlatform resolves a tag case-insensitively, so "TELEGRAM" and
// "telegram" name the same platform.
func ParseChatPlatform(s string) (ChatPlatform, error) {
	return parseTag(chatPlatforms, s)
}

func (p ChatPlatform) String() string { return string(p) }

// Valid reports whether p is a declared ChatPlatform.
func (p ChatPlatform) Valid() bool { return slices.Contains(chatPlatforms, p) }

// UnmarshalText rejects unknown tags.
func (p *ChatPlatform) UnmarshalText(text []byte) error {
	v, err := ParseChatPlatform(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// WorkingContext tags what an agent is currently doing with a user.
type WorkingContext string

const (
	WorkingContextRegistration   WorkingContext = "registration"
	WorkingContextConversation   WorkingContext = "conversation"
	WorkingContextStrategyDesign WorkingContext = "strategy_design"
)

var workingContexts = []WorkingContext{
	WorkingContextRegistration,
	WorkingContextConversation,
	WorkingContextStrategyDesign,
}

// WorkingContextValues lists every WorkingContext in declaration order.
func WorkingContextValues() []WorkingContext {
	return slices.Clone(workingContexts)
}

// ParseWorkingContext resolves a tag case-insensitively.
func ParseWorkingContext(s string) (WorkingContext, error) {
	return parseTag(workingContexts, s)
}

func (c WorkingContext) String() string { return string(c) }

// Valid reports whether c is a declared WorkingContext.
func (c WorkingContext) Valid() bool { return slices.Contains(workingContexts, c) }

// UnmarshalText rejects unknown tags.
func (c *WorkingContext) UnmarshalText(text []byte) error {
	v, err := ParseWorkingContext(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func parseTag[T ~string](values []T, s string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, v := range values {
		if string(v) == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}
