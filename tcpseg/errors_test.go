package tcpseg

import "testing"

func TestRejectErrorMessage(t *testing.T) {
	if got, want := ErrDuplicateSYN.Error(), "reject segment: duplicate SYN for known 4-tuple"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
