/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package device describes pen input surfaces: the serializable device
// descriptor, the catalogue of known models, the Surface collaborator a
// capture session drives, and coordinate mapping between tablet and screen
// space.
package device

import (
	"fmt"
	"strings"
)

// DeviceType classifies a pen device.
type DeviceType int

const (
	Signpad DeviceType = iota
	PenTablet
	PenDisplay
	PenComputer
)

var deviceTypeNames = [...]string{"Signpad", "PenTablet", "PenDisplay", "PenComputer"}

func (t DeviceType) String() string {
	if t < 0 || int(t) >= len(deviceTypeNames) {
		return "Unknown"
	}
	return deviceTypeNames[t]
}

func (t DeviceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *DeviceType) UnmarshalText(b []byte) error {
	for i, n := range deviceTypeNames {
		if strings.EqualFold(n, string(b)) {
			*t = DeviceType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown device type %q", b)
}

// ConnectionMode is the transport a device is attached over.
type ConnectionMode int

const (
	USB ConnectionMode = iota
	Serial
	Wireless
	Bluetooth
)

var connectionModeNames = [...]string{"Usb", "Serial", "Wireless", "Bluetooth"}

func (m ConnectionMode) String() string {
	if m < 0 || int(m) >= len(connectionModeNames) {
		return "Unknown"
	}
	return connectionModeNames[m]
}

func (m ConnectionMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ConnectionMode) UnmarshalText(b []byte) error {
	for i, n := range connectionModeNames {
		if strings.EqualFold(n, string(b)) {
			*m = ConnectionMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown connection mode %q", b)
}

// ErrorCode is the result of a surface or session operation. The zero
// value None means success. Codes are propagated as-is, never retried.
type ErrorCode int

const (
	None ErrorCode = iota
	DeviceBusy
	CannotConnect
	InitFail
	NullParam
	LayoutNotFound
	NotSupported
	AlreadyConnected
	NotConnected
	DisplayFail
	UserCancelled
	LayoutFail
	Unspecified
)

var errorCodeNames = [...]string{
	"NONE", "DEVICE_BUSY", "CANNOT_CONNECT", "INIT_FAIL", "NULL_PARAM", "LAYOUT_NOT_FOUND",
	"NOT_SUPPORTED", "ALREADY_CONNECTED", "NOT_CONNECTED", "DISPLAY_FAIL", "USER_CANCELLED",
	"LAYOUT_FAIL", "UNSPECIFIED",
}

var errorCodeMessages = [...]string{
	"success",
	"the device is in use by another capture",
	"cannot connect to the device",
	"device initialisation failed",
	"a required parameter is missing",
	"layout not found",
	"operation not supported by the device",
	"the device is already connected",
	"the device is not connected",
	"the device failed to display the image",
	"cancelled by the user",
	"the layout could not be rendered",
	"unspecified error",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(errorCodeNames) {
		return errorCodeNames[Unspecified]
	}
	return errorCodeNames[c]
}

// Message is a human readable description of the code.
func (c ErrorCode) Message() string {
	if c < 0 || int(c) >= len(errorCodeMessages) {
		return errorCodeMessages[Unspecified]
	}
	return errorCodeMessages[c]
}

func (c ErrorCode) Error() string { return c.String() + ": " + c.Message() }

// Err returns nil for None and the code itself otherwise.
func (c ErrorCode) Err() error {
	if c == None {
		return nil
	}
	return c
}

func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ErrorCode) UnmarshalText(b []byte) error {
	for i, n := range errorCodeNames {
		if strings.EqualFold(n, string(b)) {
			*c = ErrorCode(i)
			return nil
		}
	}
	*c = Unspecified
	return nil
}
