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


// Package cache stores computed results under caller-chosen keys.
//
// Each entry records the generation of the logic that produced it. The
// cache never compares generations: a caller reads an entry, checks it
// with Fresh against the generation it expects, and treats a mismatch as
// a miss. Writes overwrite, so concurrent writers resolve by last write
// wins.
//
// # Basic Usage
//
//	key := cache.KeyFor("summary", userID, transcriptHash)
//	entry, err := dao.FindByID(ctx, key)
//	if err != nil {
//		return err
//	}
//	if !cache.Fresh(entry, summaryGeneration) {
//		entry = cache.New(key, summaryGeneration, summarize(transcript))
//		if entry, err = dao.InsertCache(ctx, entry); err != nil {
//			return err
//		}
//	}
//
// NewLocal puts an in-process cache in front of any DAO.
package cache
