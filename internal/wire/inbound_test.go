package wire

import (
	"math"
	"testing"
)

func TestDecodeIdentifyParsesNameAndSkin(t *testing.T) {
	w := NewWriter()
	w.U8(31) // protocol_version
	w.U8(4)  // skin
	w.Str("Adder")

	pkt, err := DecodeIdentify(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeIdentify error: %v", err)
	}
	if pkt.ProtocolVersion != 31 {
		t.Fatalf("ProtocolVersion = %d, want 31", pkt.ProtocolVersion)
	}
	if pkt.Skin != 4 {
		t.Fatalf("Skin = %d, want 4", pkt.Skin)
	}
	if pkt.Name != "Adder" {
		t.Fatalf("Name = %q, want %q", pkt.Name, "Adder")
	}
	if len(pkt.CustomSkin) != 0 {
		t.Fatalf("expected no custom skin bytes, got %d", len(pkt.CustomSkin))
	}
}

func TestDecodeIdentifyCapturesTrailingCustomSkin(t *testing.T) {
	w := NewWriter()
	w.U8(31)
	w.U8(0)
	w.Str("Boa")
	w.Raw([]byte{9, 8, 7})

	pkt, err := DecodeIdentify(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeIdentify error: %v", err)
	}
	want := []byte{9, 8, 7}
	if len(pkt.CustomSkin) != len(want) {
		t.Fatalf("CustomSkin = %v, want %v", pkt.CustomSkin, want)
	}
	for i := range want {
		if pkt.CustomSkin[i] != want[i] {
			t.Fatalf("CustomSkin = %v, want %v", pkt.CustomSkin, want)
		}
	}
}

func TestDecodeIdentifyTruncated(t *testing.T) {
	if _, err := DecodeIdentify([]byte{31}); err != ErrTruncated {
		t.Fatalf("DecodeIdentify on truncated body = %v, want ErrTruncated", err)
	}
}

func TestDecodeAngleRange(t *testing.T) {
	if got := DecodeAngle(0); got != 0 {
		t.Fatalf("DecodeAngle(0) = %v, want 0", got)
	}
	got := DecodeAngle(125)
	if math.Abs(got-math.Pi) > 1e-9 {
		t.Fatalf("DecodeAngle(125) = %v, want pi", got)
	}
}
