/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"context"
	"image"
	"sync"

	"inkplatform/internal/ink"
)

// Sample is a raw pen report in the device's native tablet space.
type Sample struct {
	Seq       uint32
	X, Y      int
	Pressure  uint32
	Time      uint32
	Contact   bool
	Proximity bool
}

// Ink converts a raw sample to an untagged InkData without mapping.
func (s Sample) Ink() ink.InkData {
	return ink.InkData{
		Seq: s.Seq, X: uint32(max(s.X, 0)), Y: uint32(max(s.Y, 0)),
		Pressure: s.Pressure, Time: s.Time, Contact: s.Contact, Proximity: s.Proximity,
	}
}

// Surface is the display and pen collaborator a capture session drives.
// Implementations report failures as codes; callers never retry.
type Surface interface {
	Descriptor() Descriptor
	Display(img image.Image) ErrorCode
	Clear() ErrorCode
	SetInking(on bool)
	// Samples delivers pen reports in arrival order, already de-duplicated.
	// The channel is closed when the surface goes away.
	Samples() <-chan Sample
}

// Simulated is an in-memory Surface. It records every displayed frame and
// replays samples handed to Feed.
type Simulated struct {
	desc Descriptor

	// DisplayResult, when set, is returned by Display instead of None.
	DisplayResult ErrorCode

	mu       sync.Mutex
	frames   []image.Image
	clears   int
	inking   bool
	closed   bool
	samples  chan Sample
	done     chan struct{}
	feeders  sync.WaitGroup
	closeOne sync.Once
}

func NewSimulated(desc Descriptor) *Simulated {
	return &Simulated{desc: desc, samples: make(chan Sample, 64), done: make(chan struct{})}
}

func (s *Simulated) Descriptor() Descriptor { return s.desc }

func (s *Simulated) Display(img image.Image) ErrorCode {
	if !s.desc.HasScreen {
		return NotSupported
	}
	if s.DisplayResult != None {
		return s.DisplayResult
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, img)
	return None
}

func (s *Simulated) Clear() ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	return None
}

func (s *Simulated) SetInking(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inking = on
}

func (s *Simulated) Inking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inking
}

func (s *Simulated) Samples() <-chan Sample { return s.samples }

// Frames returns the displayed images, oldest first.
func (s *Simulated) Frames() []image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]image.Image(nil), s.frames...)
}

// Clears is the number of Clear calls.
func (s *Simulated) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// Feed queues samples, blocking while the buffer is full. It stops early
// when ctx is done or the surface is closed.
func (s *Simulated) Feed(ctx context.Context, samples ...Sample) error {
	for _, smp := range samples {
		if err := s.feed(ctx, smp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulated) feed(ctx context.Context, smp Sample) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return NotConnected
	}
	s.feeders.Add(1)
	s.mu.Unlock()
	defer s.feeders.Done()

	select {
	case s.samples <- smp:
		return nil
	case <-s.done:
		return NotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the sample stream. Feeding after Close fails with NotConnected.
// Feeders blocked on a full buffer are released before the stream closes.
func (s *Simulated) Close() {
	s.closeOne.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
		s.feeders.Wait()
		close(s.samples)
	})
}
