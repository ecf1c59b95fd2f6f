package typedvalue

import "testing"

func TestSQLParamRoundTrip(t *testing.T) {
	cases := []Value{
		NewNull(),
		NewInteger(-615634567),
		NewDouble(3.25),
		NewText("Sysop"),
		NewBlob([]byte{0xDE, 0xAD}),
	}
	for _, v := range cases {
		got := FromSQL(v.SQLParam())
		if got.Kind() != v.Kind() {
			t.Fatalf("kind changed across round trip: %v -> %v", v.Kind(), got.Kind())
		}
		switch v.Kind() {
		case Integer:
			if got.Integer() != v.Integer() {
				t.Fatalf("integer mismatch: %d != %d", got.Integer(), v.Integer())
			}
		case Double:
			if got.Double() != v.Double() {
				t.Fatalf("double mismatch")
			}
		case Text:
			if got.Text() != v.Text() {
				t.Fatalf("text mismatch")
			}
		case Blob:
			if string(got.Blob()) != string(v.Blob()) {
				t.Fatalf("blob mismatch")
			}
		}
	}
}

func TestKindString(t *testing.T) {
	if Integer.String() != "Integer" {
		t.Fatalf("unexpected Kind.String: %s", Integer.String())
	}
}
