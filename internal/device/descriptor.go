/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"encoding/json"
	"image"
)

// Descriptor is the serializable description of a pen device, as embedded
// in capture contexts.
type Descriptor struct {
	Vid               uint16         `json:"Vid"`
	Pid               uint16         `json:"Pid"`
	VendorName        string         `json:"VendorName"`
	ProductModel      string         `json:"ProductModel"`
	SerialNo          string         `json:"SerialNo"`
	MaxPressureLevels int            `json:"MaxPressureLevels"`
	MaxReportRate     int            `json:"MaxReportRate"`
	SensorResolution  int            `json:"SensorResolution"`
	HasScreen         bool           `json:"HasScreen"`
	SupportUsb        bool           `json:"SupportUsb"`
	SupportSerial     bool           `json:"SupportSerial"`
	SupportColor      bool           `json:"SupportColor"`
	ScreenWidth       int            `json:"ScreenWidth"`
	ScreenHeight      int            `json:"ScreenHeight"`
	TabletWidth       int            `json:"TabletWidth"`
	TabletHeight      int            `json:"TabletHeight"`
	DeviceType        DeviceType     `json:"DeviceType"`
	ConnectionMode    ConnectionMode `json:"ConnectionMode"`
}

func (d Descriptor) ScreenSize() image.Point { return image.Pt(d.ScreenWidth, d.ScreenHeight) }
func (d Descriptor) TabletSize() image.Point { return image.Pt(d.TabletWidth, d.TabletHeight) }

// InkSpace is the coordinate space captured ink is recorded in: the tablet
// when the device reports one, the screen otherwise.
func (d Descriptor) InkSpace() image.Point {
	if t := d.TabletSize(); t.X > 0 && t.Y > 0 {
		return t
	}
	return d.ScreenSize()
}

// IsSameDevice compares vendor and product ids, and serial numbers when
// both sides report a meaningful one.
func (d Descriptor) IsSameDevice(o Descriptor) bool {
	if d.Vid != o.Vid || d.Pid != o.Pid {
		return false
	}
	if knownSerial(d.SerialNo) && knownSerial(o.SerialNo) {
		return d.SerialNo == o.SerialNo
	}
	return true
}

func knownSerial(s string) bool { return s != "" && s != "0" }

func (d Descriptor) String() string {
	b, err := json.Marshal(d)
	if err != nil {
		return d.ProductModel
	}
	return string(b)
}
