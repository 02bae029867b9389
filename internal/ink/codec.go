/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ink

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrDecode marks malformed Base64, JSON or MessagePack ink input.
var ErrDecode = errors.New("ink: malformed data")

// wireSample is the exchange form: short keys and 0/1 booleans.
type wireSample struct {
	Seq       uint32 `json:"seq" msgpack:"seq"`
	X         uint32 `json:"x" msgpack:"x"`
	Y         uint32 `json:"y" msgpack:"y"`
	Pressure  uint32 `json:"p" msgpack:"p"`
	Time      uint32 `json:"t" msgpack:"t"`
	Contact   int    `json:"ct" msgpack:"ct"`
	Proximity int    `json:"pr" msgpack:"pr"`
	Tag       string `json:"tag,omitempty" msgpack:"tag,omitempty"`
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d InkData) wire() wireSample {
	return wireSample{
		Seq: d.Seq, X: d.X, Y: d.Y, Pressure: d.Pressure, Time: d.Time,
		Contact: bit(d.Contact), Proximity: bit(d.Proximity), Tag: d.Tag,
	}
}

// Only 1 means true, matching producers that write other integers for
// "unknown".
func (w wireSample) sample() InkData {
	return InkData{
		Seq: w.Seq, X: w.X, Y: w.Y, Pressure: w.Pressure, Time: w.Time,
		Contact: w.Contact == 1, Proximity: w.Proximity == 1, Tag: w.Tag,
	}
}

func (d InkData) MarshalJSON() ([]byte, error) { return json.Marshal(d.wire()) }

func (d *InkData) UnmarshalJSON(b []byte) error {
	var w wireSample
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*d = w.sample()
	return nil
}

// MarshalList encodes samples as a JSON array. A nil list encodes as [].
func MarshalList(samples []InkData) ([]byte, error) {
	if samples == nil {
		samples = []InkData{}
	}
	b, err := json.Marshal(samples)
	if err != nil {
		return nil, fmt.Errorf("marshal ink: %w", err)
	}
	return b, nil
}

// UnmarshalList decodes a JSON array of samples.
func UnmarshalList(data []byte) ([]InkData, error) {
	var out []InkData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	if out == nil {
		out = []InkData{}
	}
	return out, nil
}

// EncodeBase64 is base64(json(samples)) for text-only channels.
func EncodeBase64(samples []InkData) (string, error) {
	b, err := MarshalList(samples)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeBase64 inverts EncodeBase64. It never returns partial data.
func DecodeBase64(s string) ([]InkData, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrDecode, err)
	}
	return UnmarshalList(b)
}

// MarshalMsgpack encodes samples with the same keys as the JSON form.
func MarshalMsgpack(samples []InkData) ([]byte, error) {
	w := make([]wireSample, len(samples))
	for i, s := range samples {
		w[i] = s.wire()
	}
	b, err := msgpack.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal ink msgpack: %w", err)
	}
	return b, nil
}

func UnmarshalMsgpack(data []byte) ([]InkData, error) {
	var w []wireSample
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: msgpack: %w", ErrDecode, err)
	}
	out := make([]InkData, len(w))
	for i := range w {
		out[i] = w[i].sample()
	}
	return out, nil
}
