// Package indexpool provides a monotonic free-index pool.
//
// Indices are issued in increasing order and are never reissued until
// explicitly returned. The pool backs both token generation (indices are
// acquired and never returned, guaranteeing uniqueness) and the client's
// 16-bit request-correlation identifiers (indices cycle through the free
// list as responses arrive).
package indexpool
