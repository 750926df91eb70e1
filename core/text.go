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

	"golang.org/x/text/language"
)

// LocalizedText is a piece of user-facing text. English is the default
// language and is always present; the other variants are optional.
type LocalizedText struct {
	Document
	English string
	Italian string
	Spanish string
	French  string
}

// NewLocalizedText builds a detached LocalizedText with only the default
// text set.
func NewLocalizedText(english string) *LocalizedText {
	return &LocalizedText{English: english}
}

// DefaultText returns the English text.
func (t *LocalizedText) DefaultText() string {
	return t.English
}

// Variants returns the non-empty texts keyed by language.
func (t *LocalizedText) Variants() map[language.Tag]string {
	out := make(map[language.Tag]string, 4)
	for _, v := range t.variants() {
		out[v.tag] = v.text
	}
	return out
}

// Text returns the variant that best matches tag, or the default text when
// nothing matches.
func (t *LocalizedText) Text(tag language.Tag) string {
	vs := t.variants()
	if len(vs) == 0 {
		return ""
	}
	tags := make([]language.Tag, len(vs))
	for i, v := range vs {
		tags[i] = v.tag
	}
	_, idx, conf := language.NewMatcher(tags).Match(tag)
	if conf == language.No {
		return t.English
	}
	return vs[idx].text
}

type variant struct {
	tag  language.Tag
	text string
}

// variants lists the present texts with English first.
func (t *LocalizedText) variants() []variant {
	all := []variant{
		{language.English, t.English},
		{language.Italian, t.Italian},
		{language.Spanish, t.Spanish},
		{language.French, t.French},
	}
	out := all[:0]
	for _, v := range all {
		if v.text != "" {
			out = append(out, v)
		}
	}
	return out
}

func (t *LocalizedText) Validate() error {
	return ValidateLocalizedText(t)
}

type localizedTextJSON struct {
	ID      string `json:"_id,omitempty"`
	English string `json:"text_en"`
	Italian string `json:"text_it,omitempty"`
	Spanish string `json:"text_es,omitempty"`
	French  string `json:"text_fr,omitempty"`
}

func (t *LocalizedText) MarshalJSON() ([]byte, error) {
	return json.Marshal(localizedTextJSON{
		ID:      t.id,
		English: t.English,
		Italian: t.Italian,
		Spanish: t.Spanish,
		French:  t.French,
	})
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var w localizedTextJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = LocalizedText{
		English: w.English,
		Italian: w.Italian,
		Spanish: w.Spanish,
		French:  w.French,
	}
	t.bind(w.ID)
	return nil
}

func (t *LocalizedText) ToJSONString() (string, error)   { return ToJSONString(t) }
func (t *LocalizedText) ToJSON() (map[string]any, error) { return ToJSON(t) }
func (t *LocalizedText) String() string                  { return Stringify(t) }

var _ LocalizedObject = (*LocalizedText)(nil)
