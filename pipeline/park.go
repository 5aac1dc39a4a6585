// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// parker lets idle workers sleep until the stage receives work.
//
// A waiter registers itself before re-checking for work under the mutex,
// and a sender publishes work before reading the waiter count, so either the
// waiter sees the work or the sender sees the waiter. Both sides use
// read-modify-write operations on the count, which order the registration
// and the publication against the check that follows them.
type parker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiters atomix.Int32
}

func newParker() *parker {
	p := &parker{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// notify wakes every parked worker. Cheap when nobody is parked.
func (p *parker) notify() {
	if p.waiters.AddAcqRel(0) == 0 {
		return
	}
	p.broadcast()
}

func (p *parker) broadcast() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// park blocks until notified or timeout elapses, unless ready already
// reports true.
func (p *parker) park(timeout time.Duration, ready func() bool) {
	p.mu.Lock()
	p.waiters.AddAcqRel(1)
	if ready() {
		p.waiters.AddAcqRel(-1)
		p.mu.Unlock()
		return
	}
	timer := time.AfterFunc(timeout, p.broadcast)
	p.cond.Wait()
	p.waiters.AddAcqRel(-1)
	p.mu.Unlock()
	timer.Stop()
}
