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


// Package extjson implements the extended-JSON scalar encodings used by the
// entity wire formats.
//
// Plain JSON has no date type, so a time rendered as an ISO string decodes
// back as a string. Extended JSON wraps such values in a typed envelope:
//
//	{"$date": {"$numberLong": "1718000000000"}}
//
// which decodes back to a time.Time on any system that understands the
// envelope. Dates are carried with millisecond precision in UTC.
package extjson
