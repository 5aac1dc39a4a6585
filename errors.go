// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fdpipe

import "code.hybscloud.com/iox"

// ErrWouldBlock is the "Empty" result of every non-blocking pull and the
// "Full" result of a bounded push.
//
// For Dequeue, Get, Pop and Steal: no item is available right now.
// For Enqueue on a [Bounded] queue: the queue is full (backpressure).
//
// ErrWouldBlock is a control flow signal, not a failure. A caller that
// receives it from Steal should move on to another victim rather than spin
// on the same deque.
//
// Because Empty is reported as an error, a container holding a nil or zero
// item is always distinguishable from an empty one:
//
//	item, err := q.Dequeue()
//	switch {
//	case err == nil:
//	    use(item) // item may legitimately be nil
//	case fdpipe.IsWouldBlock(err):
//	    // nothing to do yet
//	}
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
