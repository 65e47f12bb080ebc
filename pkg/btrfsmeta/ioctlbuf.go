package btrfsmeta

import "unsafe"

// BufferedIoctl is a header value with a fixed trailing scratch region,
// laid out as a single struct so the two fields are contiguous in memory —
// the kernel writes across the header/trailing boundary in one ioctl call,
// so the trailing region's address must be exactly sizeof(Header) bytes
// past the header's address. Modeled on the reference implementation's
// WithMemAfter<T, N>: a value type, not a pair of independently allocated
// buffers.
//
// Trailing is typically a fixed-size byte array type such as [16384]byte;
// it is a type parameter (rather than a size constant) because Go generics
// have no const-size-array parameter.
type BufferedIoctl[Header any, Trailing any] struct {
	Hdr      Header
	Trailing Trailing
}

// HeaderPtr returns a pointer to the header, suitable for passing to
// ioctl.Do — the call writes into both Hdr and, via the flexible-array
// convention the kernel ioctl expects, Trailing immediately after it.
func (b *BufferedIoctl[H, T]) HeaderPtr() *H {
	return &b.Hdr
}

// TrailingSlice exposes the trailing region as an addressable []byte,
// regardless of its concrete array size.
func (b *BufferedIoctl[H, T]) TrailingSlice() []byte {
	n := int(unsafe.Sizeof(b.Trailing))
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.Trailing)), n)
}

// TrailingAddr returns the address of the trailing region, for kernel APIs
// that take it as a raw pointer field inside the header (e.g. LOGICAL_INO's
// Inodes field) rather than relying on struct layout alone.
func (b *BufferedIoctl[H, T]) TrailingAddr() uintptr {
	return uintptr(unsafe.Pointer(&b.Trailing))
}
