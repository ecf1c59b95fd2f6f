package legacyfile

import (
	"math"
	"testing"
)

func TestLeU16AndLeU32(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67}
	if got := leU16(data); got != 0x2301 {
		t.Fatalf("leU16 = 0x%x, want 0x2301", got)
	}
	if got := leU32(data); got != 0x67452301 {
		t.Fatalf("leU32 = 0x%x, want 0x67452301", got)
	}

	short := []byte{0xAA}
	if leU16(short) != 0 {
		t.Fatalf("leU16 on short input should be 0")
	}
	if leU32(short) != 0 {
		t.Fatalf("leU32 on short input should be 0")
	}
}

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := addOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("addOverflowSafe(10,5) = %d,%v want 15,true", sum, ok)
	}
	if _, ok := addOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := addOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestSliceAt(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := sliceAt(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("sliceAt returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := sliceAt(data, 4, 2); ok {
		t.Fatalf("sliceAt should fail when extending beyond len")
	}
	if _, ok := sliceAt(data, -1, 1); ok {
		t.Fatalf("sliceAt should reject negative offset")
	}
	if _, ok := sliceAt(data, 1, -1); ok {
		t.Fatalf("sliceAt should reject negative length")
	}
}
