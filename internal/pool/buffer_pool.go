// Package pool holds the reusable scratch objects of the codec: content buffers for
// block encoding and decoding, and timers for the fragment assembler.
package pool

import "sync"

var bufferPool sync.Pool

// GetBuffer returns a zeroed byte slice of length size.
//
// Return it to the pool with PutBuffer once no reference to it remains.
func GetBuffer(size int) []byte {
	if v := bufferPool.Get(); v != nil {
		buf, _ := v.(*[]byte) // only *[]byte is ever put into the pool
		if cap(*buf) >= size {
			b := (*buf)[:size]
			clear(b)

			return b
		}
	}

	return make([]byte, size)
}

// PutBuffer returns buf to the pool. buf cannot be used afterwards.
func PutBuffer(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:0]
	bufferPool.Put(&buf)
}
