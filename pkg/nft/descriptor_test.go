package nft

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDescriptorsAreValid(t *testing.T) {
	set := DefaultDescriptors()
	if err := set.Create.Validate(); err != nil {
		t.Fatalf("create descriptor invalid: %v", err)
	}
	if err := set.Update.Validate(); err != nil {
		t.Fatalf("update descriptor invalid: %v", err)
	}
	if set.Create.ImageFile != "hedera.png" || set.Update.ImageFile != "success.png" {
		t.Fatalf("unexpected default images: %s, %s", set.Create.ImageFile, set.Update.ImageFile)
	}
}

func TestDescriptorValidateSellerFee(t *testing.T) {
	cases := []struct {
		basisPoints int
		valid       bool
	}{
		{basisPoints: 0, valid: true},
		{basisPoints: 100, valid: true},
		{basisPoints: 10000, valid: true},
		{basisPoints: -1, valid: false},
		{basisPoints: 10001, valid: false},
	}
	for _, testCase := range cases {
		descriptor := DefaultCreateDescriptor
		descriptor.SellerFeeBasisPoints = testCase.basisPoints
		err := descriptor.Validate()
		if testCase.valid && err != nil {
			t.Fatalf("%d bps: unexpected error %v", testCase.basisPoints, err)
		}
		if !testCase.valid {
			if err == nil {
				t.Fatalf("%d bps: expected validation error", testCase.basisPoints)
			}
			if !strings.Contains(err.Error(), "SellerFeeBasisPoints") {
				t.Fatalf("%d bps: expected field name in error, got %v", testCase.basisPoints, err)
			}
		}
	}
}

func TestDescriptorValidateRequiredFields(t *testing.T) {
	descriptor := Descriptor{Description: "only a description"}
	err := descriptor.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, field := range []string{"Name is required", "Symbol is required", "ImageFile is required"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %q in %v", field, err)
		}
	}

	descriptor = DefaultCreateDescriptor
	descriptor.Name = strings.Repeat("n", 101)
	if err := descriptor.Validate(); err == nil || !strings.Contains(err.Error(), "max=100") {
		t.Fatalf("expected name length error, got %v", err)
	}
}

func TestResolveImage(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(second, "hedera.png"), pngHeader, 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := os.Mkdir(filepath.Join(first, "success.png"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, err := DefaultCreateDescriptor.ResolveImage(first, second)
	if err != nil {
		t.Fatalf("ResolveImage failed: %v", err)
	}
	if path != filepath.Join(second, "hedera.png") {
		t.Fatalf("unexpected path %s", path)
	}

	if _, err := DefaultUpdateDescriptor.ResolveImage(first); err == nil {
		t.Fatalf("expected directories to be rejected")
	}

	absolute := DefaultCreateDescriptor
	absolute.ImageFile = filepath.Join(second, "hedera.png")
	path, err = absolute.ResolveImage(first)
	if err != nil || path != absolute.ImageFile {
		t.Fatalf("expected absolute path to be used as is, got %s (%v)", path, err)
	}

	empty := DefaultCreateDescriptor
	empty.ImageFile = " "
	if _, err := empty.ResolveImage(first); err == nil {
		t.Fatalf("expected missing image file error")
	}
}

func TestRoyaltyPercent(t *testing.T) {
	cases := map[int]string{
		0:     "0%",
		100:   "1%",
		250:   "2.5%",
		10000: "100%",
	}
	for basisPoints, expected := range cases {
		descriptor := Descriptor{SellerFeeBasisPoints: basisPoints}
		if got := descriptor.RoyaltyPercent(); got != expected {
			t.Fatalf("%d bps: expected %s, got %s", basisPoints, expected, got)
		}
	}
}

func TestLoadDescriptors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptors.yaml")
	content := `create:
  name: Genesis
  symbol: GEN
  description: First edition
  sellerFeeBasisPoints: 250
  imageFile: genesis.png
update:
  name: Revealed
  symbol: REV
  description: Revealed edition
  sellerFeeBasisPoints: 500
  imageFile: revealed.png
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write descriptors: %v", err)
	}

	set, err := LoadDescriptors(path)
	if err != nil {
		t.Fatalf("LoadDescriptors failed: %v", err)
	}
	expectedCreate := Descriptor{
		Name:                 "Genesis",
		Symbol:               "GEN",
		Description:          "First edition",
		SellerFeeBasisPoints: 250,
		ImageFile:            "genesis.png",
	}
	if set.Create != expectedCreate {
		t.Fatalf("unexpected create descriptor: %+v", set.Create)
	}
	if set.Update.Name != "Revealed" || set.Update.SellerFeeBasisPoints != 500 {
		t.Fatalf("unexpected update descriptor: %+v", set.Update)
	}
}

func TestLoadDescriptorsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadDescriptors(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	content := `create:
  name: Genesis
  symbol: GEN
  sellerFeeBasisPoints: 20000
  imageFile: genesis.png
`
	if err := os.WriteFile(invalid, []byte(content), 0o600); err != nil {
		t.Fatalf("write descriptors: %v", err)
	}
	if _, err := LoadDescriptors(invalid); err == nil || !strings.Contains(err.Error(), "SellerFeeBasisPoints") {
		t.Fatalf("expected validation error, got %v", err)
	}

	malformed := filepath.Join(dir, "malformed.yaml")
	if err := os.WriteFile(malformed, []byte("create: [unterminated"), 0o600); err != nil {
		t.Fatalf("write descriptors: %v", err)
	}
	if _, err := LoadDescriptors(malformed); err == nil {
		t.Fatalf("expected parse error")
	}
}
