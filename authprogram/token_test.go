package authprogram

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
	"testing/iotest"
)

func TestIssueToken(t *testing.T) {
	src := bytes.Repeat([]byte{0xfb}, TokenBytes)
	tk, err := IssueToken(bytes.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(tk) != 43 {
		t.Fatalf("token should have 43 chars got %v", len(tk))
	}
	raw, err := base64.RawURLEncoding.DecodeString(tk)
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(raw, src) {
		t.Fatal("token does not encode the random bytes")
	}

	_, err = IssueToken(bytes.NewReader(src[:10]))
	if err == nil {
		t.Fatal("short reads must fail")
	}
	_, err = IssueToken(iotest.ErrReader(errors.New("boom")))
	if err == nil {
		t.Fatal("reader errors must fail")
	}
}

func TestRandomTokens(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tk, err := RandomTokens()
		if err != nil {
			t.Fatal(err)
		}
		if _, dup := seen[tk]; dup {
			t.Fatalf("duplicated token %v", tk)
		}
		seen[tk] = struct{}{}
	}
}
