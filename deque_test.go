// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fdpipe"
)

// =============================================================================
// Deque - Owner and Thief Ends
// =============================================================================

func TestDequePopIsLIFO(t *testing.T) {
	d := fdpipe.NewDeque[int](8)
	for i := 1; i <= 3; i++ {
		d.Push(i)
	}
	for _, want := range []int{3, 2, 1} {
		got, err := d.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Fatalf("Pop: got %d, want %d", got, want)
		}
	}
	if _, err := d.Pop(); !errors.Is(err, fdpipe.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestDequeStealIsFIFO(t *testing.T) {
	d := fdpipe.NewDeque[int](8)
	for i := 1; i <= 3; i++ {
		d.Push(i)
	}
	for _, want := range []int{1, 2, 3} {
		got, err := d.Steal()
		if err != nil {
			t.Fatalf("Steal: %v", err)
		}
		if got != want {
			t.Fatalf("Steal: got %d, want %d", got, want)
		}
	}
	if _, err := d.Steal(); !errors.Is(err, fdpipe.ErrWouldBlock) {
		t.Fatalf("Steal on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestDequeMixedEnds(t *testing.T) {
	d := fdpipe.NewDeque[int](4)
	for i := 1; i <= 4; i++ {
		d.Push(i)
	}
	if v, _ := d.Steal(); v != 1 {
		t.Fatalf("Steal: got %d, want 1", v)
	}
	if v, _ := d.Pop(); v != 4 {
		t.Fatalf("Pop: got %d, want 4", v)
	}
	if d.Size() != 2 {
		t.Fatalf("Size: got %d, want 2", d.Size())
	}
	// Empty Pop must leave the deque consistent for the next Push.
	d.Pop()
	d.Pop()
	if _, err := d.Pop(); err == nil {
		t.Fatal("Pop on empty: got nil error")
	}
	if d.Size() != 0 {
		t.Fatalf("Size after empty Pop: got %d, want 0", d.Size())
	}
	d.Push(9)
	if v, err := d.Steal(); err != nil || v != 9 {
		t.Fatalf("Steal after refill: got (%d, %v), want (9, nil)", v, err)
	}
}

func TestDequeGrows(t *testing.T) {
	d := fdpipe.NewDeque[int](2)
	// Steal a few first so the live range wraps before growing.
	for i := range 2 {
		d.Push(i)
	}
	d.Steal()
	d.Steal()

	const n = 100
	for i := range n {
		d.Push(i)
	}
	if d.Cap() < n {
		t.Fatalf("Cap after %d pushes: got %d, want >= %d", n, d.Cap(), n)
	}
	if d.Size() != n {
		t.Fatalf("Size: got %d, want %d", d.Size(), n)
	}
	for i := range n {
		v, err := d.Steal()
		if err != nil || v != i {
			t.Fatalf("Steal(%d): got (%d, %v), want (%d, nil)", i, v, err, i)
		}
	}
}

// =============================================================================
// Deque - Concurrency
// =============================================================================

// TestDequeExactlyOnce runs the owner pushing and popping against several
// thieves and checks that every pushed item is taken exactly once.
func TestDequeExactlyOnce(t *testing.T) {
	if fdpipe.RaceEnabled {
		t.Skip("skip: lock-free container under race detector")
	}

	const thieves, total = 4, 200000
	d := fdpipe.NewDeque[int](16)
	taken := make([]atomix.Int32, total)
	var stop atomix.Bool
	var wg sync.WaitGroup

	for range thieves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.LoadAcquire() || !d.IsEmpty() {
				if v, err := d.Steal(); err == nil {
					taken[v].Add(1)
				}
			}
		}()
	}

	for i := range total {
		d.Push(i)
		// Pop every third push so the owner races thieves at the bottom.
		if i%3 == 0 {
			if v, err := d.Pop(); err == nil {
				taken[v].Add(1)
			}
		}
	}
	for {
		v, err := d.Pop()
		if err != nil {
			break
		}
		taken[v].Add(1)
	}
	stop.StoreRelease(true)
	wg.Wait()

	for i := range taken {
		if c := taken[i].Load(); c != 1 {
			t.Fatalf("item %d taken %d times, want 1", i, c)
		}
	}
}

// TestDequeStealAgainstShallowOwner keeps the deque one or two items deep so
// nearly every owner Pop contends with a thief for the last element.
func TestDequeStealAgainstShallowOwner(t *testing.T) {
	if fdpipe.RaceEnabled {
		t.Skip("skip: lock-free container under race detector")
	}

	const thieves, total = 4, 200000
	d := fdpipe.NewDeque[int](2)
	taken := make([]atomix.Int32, total)
	var stolen atomix.Int64
	var stop atomix.Bool
	var wg sync.WaitGroup

	for range thieves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.LoadAcquire() {
				if v, err := d.Steal(); err == nil {
					taken[v].Add(1)
					stolen.Add(1)
				}
			}
		}()
	}

	for i := 0; i < total; i += 2 {
		d.Push(i)
		d.Push(i + 1)
		for {
			v, err := d.Pop()
			if err != nil {
				break
			}
			taken[v].Add(1)
		}
	}
	stop.StoreRelease(true)
	wg.Wait()

	if !d.IsEmpty() {
		t.Fatalf("deque not empty after drain: size %d", d.Size())
	}
	for i := range taken {
		if c := taken[i].Load(); c != 1 {
			t.Fatalf("item %d taken %d times, want 1 (stolen %d)", i, c, stolen.Load())
		}
	}
}
