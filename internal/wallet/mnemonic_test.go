package wallet

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateMnemonic(t *testing.T) {
	for _, words := range []int{12, 15, 18, 21, 24} {
		m, err := GenerateMnemonic(words)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d): %v", words, err)
		}
		if got := len(strings.Fields(m)); got != words {
			t.Errorf("GenerateMnemonic(%d) has %d words", words, got)
		}
		if !ValidateMnemonic(m) {
			t.Errorf("generated mnemonic is invalid: %q", m)
		}
	}
	for _, words := range []int{0, 11, 13, 27} {
		if _, err := GenerateMnemonic(words); err == nil {
			t.Errorf("GenerateMnemonic(%d) should fail", words)
		}
	}
}

func TestSeedFromMnemonic_Vector(t *testing.T) {
	// BIP-39 reference vector.
	seed, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	want := "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
	if got := hex.EncodeToString(seed); got != want {
		t.Errorf("seed = %s, want %s", got, want)
	}
}

func TestSeedFromMnemonic_Invalid(t *testing.T) {
	bad := strings.Replace(testMnemonic, "about", "abandon", 1)
	if _, err := SeedFromMnemonic(bad, ""); !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("err = %v, want ErrInvalidMnemonic", err)
	}
}
