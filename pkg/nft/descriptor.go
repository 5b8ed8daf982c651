package nft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// DefaultCreateDescriptor is the NFT minted by the demo.
var DefaultCreateDescriptor = Descriptor{
	Name:                 "Name",
	Symbol:               "SYMBOL",
	Description:          "Description",
	SellerFeeBasisPoints: 0,
	ImageFile:            "hedera.png",
}

// DefaultUpdateDescriptor is the metadata the demo NFT is updated to.
var DefaultUpdateDescriptor = Descriptor{
	Name:                 "Update",
	Symbol:               "UPDATE",
	Description:          "Update Description",
	SellerFeeBasisPoints: 100,
	ImageFile:            "success.png",
}

// DescriptorSet is the pair of descriptors a demo run uses.
type DescriptorSet struct {
	Create Descriptor `yaml:"create"`
	Update Descriptor `yaml:"update"`
}

func DefaultDescriptors() DescriptorSet {
	return DescriptorSet{Create: DefaultCreateDescriptor, Update: DefaultUpdateDescriptor}
}

// Validate checks the descriptor fields. It does not touch the filesystem.
func (d Descriptor) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s", fieldErr.Field(), fieldErr.Tag(), fieldErr.Param()))
		}
	}
	return fmt.Errorf("invalid descriptor %q: %s", d.Name, strings.Join(messages, "; "))
}

// ResolveImage returns the path of the descriptor's image in the first of
// dirs that contains it. An absolute ImageFile is used as is.
func (d Descriptor) ResolveImage(dirs ...string) (string, error) {
	imageFile := strings.TrimSpace(d.ImageFile)
	if imageFile == "" {
		return "", fmt.Errorf("descriptor %q has no image file", d.Name)
	}

	candidates := []string{imageFile}
	if !filepath.IsAbs(imageFile) {
		candidates = candidates[:0]
		for _, dir := range dirs {
			candidates = append(candidates, filepath.Join(dir, imageFile))
		}
		if len(dirs) == 0 {
			candidates = append(candidates, imageFile)
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("image file %s not found in %s", imageFile, strings.Join(dirs, ", "))
}

// RoyaltyPercent renders the seller fee as a percentage, e.g. 250 -> "2.5%".
func (d Descriptor) RoyaltyPercent() string {
	return decimal.New(int64(d.SellerFeeBasisPoints), -2).String() + "%"
}

// LoadDescriptors reads a YAML file with create and update descriptors.
// Fields left out of the file keep the default descriptor values.
func LoadDescriptors(path string) (DescriptorSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DescriptorSet{}, fmt.Errorf("failed to read descriptors: %w", err)
	}

	set := DefaultDescriptors()
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return DescriptorSet{}, fmt.Errorf("failed to parse descriptors %s: %w", path, err)
	}
	if err := set.Create.Validate(); err != nil {
		return DescriptorSet{}, err
	}
	if err := set.Update.Validate(); err != nil {
		return DescriptorSet{}, err
	}
	return set, nil
}
