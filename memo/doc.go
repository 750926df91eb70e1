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


// Package memo memoizes LLM completions in the cache subsystem.
//
// A Completer keys each prompt with cache.KeyFor and stores the completion
// with the Completer's generation. Bumping the generation after changing
// a model or prompt template turns every older entry into a miss, which is
// then overwritten.
package memo
