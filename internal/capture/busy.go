/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package capture

import (
	"sync"

	"inkplatform/internal/device"
)

// busy tracks the surfaces that currently have an open session.
var busy = struct {
	sync.Mutex
	surfaces map[device.Surface]string
}{surfaces: map[device.Surface]string{}}

func acquire(s device.Surface, id string) bool {
	busy.Lock()
	defer busy.Unlock()
	if _, ok := busy.surfaces[s]; ok {
		return false
	}
	busy.surfaces[s] = id
	return true
}

func release(s device.Surface, id string) {
	busy.Lock()
	defer busy.Unlock()
	if busy.surfaces[s] == id {
		delete(busy.surfaces, s)
	}
}

// InUse reports whether a session is open on s.
func InUse(s device.Surface) bool {
	busy.Lock()
	defer busy.Unlock()
	_, ok := busy.surfaces[s]
	return ok
}
