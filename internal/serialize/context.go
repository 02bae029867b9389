/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"inkplatform/internal/device"
	"inkplatform/internal/ink"
	"inkplatform/internal/layout"
	applog "inkplatform/internal/log"
)

// Context is the result of a capture: either an error (code and message)
// or the device descriptor, the captured ink and the layout it was signed
// on, plus free-form annotations.
type Context struct {
	code    device.ErrorCode
	message string

	device  device.Descriptor
	penData []ink.InkData
	layout  layout.Layout
	dict    map[string]string

	// Pictures controls where image elements of the layout are written.
	Pictures Options
}

// NewContext captures a copy of penData.
func NewContext(desc device.Descriptor, penData []ink.InkData, l layout.Layout) *Context {
	return &Context{
		device:  desc,
		penData: append([]ink.InkData(nil), penData...),
		layout:  l,
		dict:    map[string]string{},
	}
}

// NewErrorContext reports a failed capture.
func NewErrorContext(code device.ErrorCode, message string) *Context {
	if message == "" {
		message = code.Message()
	}
	return &Context{code: code, message: message, dict: map[string]string{}}
}

func (c *Context) IsError() bool                 { return c.code != device.None }
func (c *Context) Code() device.ErrorCode        { return c.code }
func (c *Context) Message() string               { return c.message }
func (c *Context) Device() device.Descriptor     { return c.device }
func (c *Context) Layout() layout.Layout         { return c.layout }
func (c *Context) PenData() []ink.InkData        { return append([]ink.InkData(nil), c.penData...) }
func (c *Context) Dictionary() map[string]string { return maps.Clone(c.dict) }

// AddData stores an annotation. It fails when key is already present.
func (c *Context) AddData(key, value string) bool {
	if _, ok := c.dict[key]; ok {
		return false
	}
	c.dict[key] = value
	return true
}

func (c *Context) Data(key string) (string, bool) {
	v, ok := c.dict[key]
	return v, ok
}

// RemoveData reports whether key was present.
func (c *Context) RemoveData(key string) bool {
	if _, ok := c.dict[key]; !ok {
		return false
	}
	delete(c.dict, key)
	return true
}

// String is "<code>:<message>" for an error context and the envelope JSON
// otherwise.
func (c *Context) String() string {
	if c.IsError() {
		return strconv.Itoa(int(c.code)) + ":" + c.message
	}
	b, _ := c.MarshalJSON()
	return string(b)
}

var emptyField = json.RawMessage(`""`)

type envelope struct {
	Dictionary map[string]string `json:"dictionary"`
	PenDevice  json.RawMessage   `json:"PenDevice"`
	PenData    json.RawMessage   `json:"PenData"`
	Layout     json.RawMessage   `json:"Layout"`
}

type errorEnvelope struct {
	ErrorCode    device.ErrorCode `json:"ErrorCode"`
	ErrorMessage string           `json:"ErrorMessage"`
}

// MarshalJSON writes the four envelope keys. A section that fails to
// serialize is written as an empty string instead of failing the envelope.
func (c *Context) MarshalJSON() ([]byte, error) {
	if c.IsError() {
		return json.Marshal(errorEnvelope{ErrorCode: c.code, ErrorMessage: c.message})
	}
	lg := applog.WithComponent("serialize")
	section := func(name string, b []byte, err error) json.RawMessage {
		if err != nil {
			lg.Warn("context section not serialized", slog.String("section", name), slog.Any("err", err))
			return emptyField
		}
		return b
	}
	env := envelope{Dictionary: c.dict}
	if env.Dictionary == nil {
		env.Dictionary = map[string]string{}
	}
	b, err := json.Marshal(c.device)
	env.PenDevice = section("PenDevice", b, err)
	b, err = ink.MarshalList(c.penData)
	env.PenData = section("PenData", b, err)
	b, err = MarshalLayout(c.layout, c.Pictures)
	env.Layout = section("Layout", b, err)
	return json.Marshal(env)
}

// UnmarshalContext reads an envelope written by MarshalJSON. Sections
// written as empty strings come back as zero values.
func UnmarshalContext(data []byte, opt Options) (*Context, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if _, ok := probe["ErrorCode"]; ok {
		var e errorEnvelope
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
		return &Context{code: e.ErrorCode, message: e.ErrorMessage, dict: map[string]string{}}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	c := &Context{dict: env.Dictionary, Pictures: opt}
	if c.dict == nil {
		c.dict = map[string]string{}
	}
	if present(env.PenDevice) {
		if err := json.Unmarshal(env.PenDevice, &c.device); err != nil {
			return nil, fmt.Errorf("decode context device: %w", err)
		}
	}
	if present(env.PenData) {
		samples, err := ink.UnmarshalList(env.PenData)
		if err != nil {
			return nil, fmt.Errorf("decode context pen data: %w", err)
		}
		c.penData = samples
	}
	if present(env.Layout) {
		l, err := UnmarshalLayout(env.Layout, opt)
		if err != nil {
			return nil, fmt.Errorf("decode context layout: %w", err)
		}
		c.layout = l
	}
	return c, nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, emptyField) && !bytes.Equal(raw, []byte("null"))
}
