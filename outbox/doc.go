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


// Package outbox delivers queued UnreadMessages to their recipients over a
// messaging platform.
//
// Messages are queued with Enqueue and sent by Deliver. A message is
// deleted only after the platform accepted it, so a failed delivery leaves
// it (and every later message to the same recipient) queued for the next
// attempt.
package outbox
