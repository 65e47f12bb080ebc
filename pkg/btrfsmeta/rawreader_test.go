package btrfsmeta

import "testing"

func TestRawReaderSequence(t *testing.T) {
	buf := []byte{
		0x2a,                   // uint8: 42
		0x01, 0x02,             // uint16: 0x0201
		0x01, 0x02, 0x03, 0x04, // uint32: 0x04030201
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, // uint64
		'h', 'i',
	}
	r := NewRawReader(buf)

	u8, err := r.Uint8()
	if err != nil || u8 != 0x2a {
		t.Fatalf("Uint8() = %d, %v, want 42, nil", u8, err)
	}
	u16, err := r.Uint16()
	if err != nil || u16 != 0x0201 {
		t.Fatalf("Uint16() = %x, %v, want 0x0201, nil", u16, err)
	}
	u32, err := r.Uint32()
	if err != nil || u32 != 0x04030201 {
		t.Fatalf("Uint32() = %x, %v, want 0x04030201, nil", u32, err)
	}
	u64, err := r.Uint64()
	if err != nil || u64 != 0x0807060504030201 {
		t.Fatalf("Uint64() = %x, %v, want 0x0807060504030201, nil", u64, err)
	}
	name, err := r.Bytes(2)
	if err != nil || string(name) != "hi" {
		t.Fatalf("Bytes(2) = %q, %v, want hi, nil", name, err)
	}
	if r.Available() != 0 {
		t.Fatalf("Available() = %d, want 0", r.Available())
	}
}

func TestRawReaderExhausted(t *testing.T) {
	r := NewRawReader([]byte{1, 2, 3})
	if _, err := r.Uint32(); err != ErrExhausted {
		t.Fatalf("Uint32() err = %v, want ErrExhausted", err)
	}
}

func TestRawReaderSkip(t *testing.T) {
	r := NewRawReader([]byte{1, 2, 3, 4, 5})
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip(2) = %v", err)
	}
	u8, err := r.Uint8()
	if err != nil || u8 != 3 {
		t.Fatalf("Uint8() after skip = %d, %v, want 3, nil", u8, err)
	}
	if err := r.Skip(10); err != ErrExhausted {
		t.Fatalf("Skip(10) = %v, want ErrExhausted", err)
	}
}
