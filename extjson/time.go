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


package extjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDate indicates a value that is not an extended-JSON date.
var ErrInvalidDate = errors.New("invalid extended JSON date")

// Time is a time.Time that encodes as an extended-JSON date.
type Time time.Time

// NewTime truncates t to the precision the wire format can carry.
func NewTime(t time.Time) Time {
	return Time(Truncate(t))
}

// Truncate drops sub-millisecond precision and the monotonic reading and
// converts t to UTC, so that a value survives an encode/decode cycle intact.
func Truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

// Std returns the value as a time.Time.
func (t Time) Std() time.Time {
	return time.Time(t)
}

// MarshalJSON renders the canonical form {"$date":{"$numberLong":"<ms>"}}.
func (t Time) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$date":{"$numberLong":"`)
	buf.WriteString(strconv.FormatInt(time.Time(t).UnixMilli(), 10))
	buf.WriteString(`"}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the canonical form as well as the relaxed forms
// {"$date":"<RFC 3339>"} and {"$date":<ms>}.
func (t *Time) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	raw := bytes.TrimSpace(envelope.Date)
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing $date", ErrInvalidDate)
	}

	switch raw[0] {
	case '{':
		var long struct {
			NumberLong string `json:"$numberLong"`
		}
		if err := json.Unmarshal(raw, &long); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		ms, err := strconv.ParseInt(long.NumberLong, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		*t = Time(time.UnixMilli(ms).UTC())
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		*t = NewTime(parsed)
	default:
		ms, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDate, err)
		}
		*t = Time(time.UnixMilli(ms).UTC())
	}
	return nil
}
