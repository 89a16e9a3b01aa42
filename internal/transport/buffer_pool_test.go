package transport

import "testing"

func TestGetBuffer_ReturnsMaxMessageSizeBuffer(t *testing.T) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if len(*buf) != MaxMessageSize {
		t.Errorf("len(buf) = %d, want %d", len(*buf), MaxMessageSize)
	}
}

func TestPutBuffer_ZeroesBeforeReuse(t *testing.T) {
	buf := GetBuffer()
	(*buf)[0] = 0xFF
	(*buf)[100] = 0xAB
	PutBuffer(buf)

	buf2 := GetBuffer()
	defer PutBuffer(buf2)
	for i, b := range *buf2 {
		if b != 0 {
			t.Fatalf("buffer not zeroed at index %d: got %x", i, b)
		}
	}
}
