package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sup3rsecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "sup3rsecret" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("sup3rsecret", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("wrongpass1", hash) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"short1", true},
		{"allletters", true},
		{"12345678", true},
		{"goodpass1", false},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.wantErr && err == nil {
			t.Errorf("ValidatePassword(%q): expected error", tc.password)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("ValidatePassword(%q): unexpected error %v", tc.password, err)
		}
	}
}
