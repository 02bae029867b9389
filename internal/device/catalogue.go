/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"sort"
	"strings"
)

const (
	WacomVID    = 0x056a
	WacomVendor = "Wacom"
)

// Tablet sizes of the signpads are the nominal sensor ranges reported by the
// devices; pen displays report in screen pixels.
var catalogue = []Descriptor{
	signpad(0x00a2, "STU-300", 396, 100, 9600, 2400, false, false),
	signpad(0x00a4, "STU-430", 320, 200, 9600, 6000, false, false),
	signpad(0x00a6, "STU-430V", 320, 200, 9600, 6000, false, true),
	signpad(0x00a1, "STU-500", 640, 480, 10240, 7680, false, true),
	signpad(0x00a3, "STU-520", 800, 480, 10800, 6480, true, false),
	signpad(0x00a5, "STU-530", 800, 480, 10800, 6480, true, false),
	signpad(0x00a7, "STU-540", 800, 480, 9600, 5760, true, true),
	display(0x00fb, "DTU-1031", 1280, 800, 200),
	display(0x032f, "DTU-1031X", 1024, 600, 200),
	display(0x0336, "DTU-1141", 1920, 1080, 200),
	display(0x00f0, "DTU-1631", 1366, 768, 200),
	display(0x00c7, "DTU-1931", 1280, 1024, 197),
	display(0x00ce, "DTU-2231", 1920, 1080, 197),
	display(0x0343, "DTK-1651", 1920, 1080, 197),
	display(0x0057, "DTK-2241", 1920, 1080, 197),
}

func signpad(pid uint16, model string, sw, sh, tw, th int, color, serial bool) Descriptor {
	return Descriptor{
		Vid: WacomVID, Pid: pid, VendorName: WacomVendor, ProductModel: model,
		MaxPressureLevels: 1024, MaxReportRate: 200, SensorResolution: 2540,
		HasScreen: true, SupportUsb: true, SupportSerial: serial, SupportColor: color,
		ScreenWidth: sw, ScreenHeight: sh, TabletWidth: tw, TabletHeight: th,
		DeviceType: Signpad, ConnectionMode: USB,
	}
}

func display(pid uint16, model string, w, h, rate int) Descriptor {
	return Descriptor{
		Vid: WacomVID, Pid: pid, VendorName: WacomVendor, ProductModel: model,
		MaxPressureLevels: 1024, MaxReportRate: rate,
		HasScreen: true, SupportUsb: true, SupportColor: true,
		ScreenWidth: w, ScreenHeight: h, TabletWidth: w, TabletHeight: h,
		DeviceType: PenDisplay, ConnectionMode: USB,
	}
}

// Models returns the known devices sorted by model name.
func Models() []Descriptor {
	out := append([]Descriptor(nil), catalogue...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductModel < out[j].ProductModel })
	return out
}

// Lookup finds a model by name, ignoring case and a missing dash
// ("stu530" matches "STU-530").
func Lookup(model string) (Descriptor, bool) {
	want := normalizeModel(model)
	for _, d := range catalogue {
		if normalizeModel(d.ProductModel) == want {
			return d, true
		}
	}
	return Descriptor{}, false
}

// LookupPID finds a Wacom model by USB product id.
func LookupPID(pid uint16) (Descriptor, bool) {
	for _, d := range catalogue {
		if d.Pid == pid {
			return d, true
		}
	}
	return Descriptor{}, false
}

func normalizeModel(s string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "", "_", "").Replace(s))
}
