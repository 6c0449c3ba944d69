package enums

import "fmt"

// ItemCategory represents the canonical clothing categories supported by the catalog.
type ItemCategory string

const (
	ItemCategoryTops        ItemCategory = "tops"
	ItemCategoryBottoms     ItemCategory = "bottoms"
	ItemCategoryDresses     ItemCategory = "dresses"
	ItemCategoryOuterwear   ItemCategory = "outerwear"
	ItemCategoryShoes       ItemCategory = "shoes"
	ItemCategoryAccessories ItemCategory = "accessories"
)

var validItemCategories = []ItemCategory{
	ItemCategoryTops,
	ItemCategoryBottoms,
	ItemCategoryDresses,
	ItemCategoryOuterwear,
	ItemCategoryShoes,
	ItemCategoryAccessories,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory.
func ParseItemCategory(value string) (ItemCategory, error) {
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}

// ItemSize defines the available garment sizes.
type ItemSize string

const (
	ItemSizeXS  ItemSize = "xs"
	ItemSizeS   ItemSize = "s"
	ItemSizeM   ItemSize = "m"
	ItemSizeL   ItemSize = "l"
	ItemSizeXL  ItemSize = "xl"
	ItemSizeXXL ItemSize = "xxl"
)

var validItemSizes = []ItemSize{
	ItemSizeXS,
	ItemSizeS,
	ItemSizeM,
	ItemSizeL,
	ItemSizeXL,
	ItemSizeXXL,
}

// String implements fmt.Stringer.
func (s ItemSize) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known ItemSize.
func (s ItemSize) IsValid() bool {
	for _, candidate := range validItemSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemSize converts raw input into an ItemSize.
func ParseItemSize(value string) (ItemSize, error) {
	for _, candidate := range validItemSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item size %q", value)
}

// ItemCondition captures the wear grade of a listed garment.
type ItemCondition string

const (
	ItemConditionExcellent ItemCondition = "excellent"
	ItemConditionGood      ItemCondition = "good"
	ItemConditionFair      ItemCondition = "fair"
)

var validItemConditions = []ItemCondition{
	ItemConditionExcellent,
	ItemConditionGood,
	ItemConditionFair,
}

// String implements fmt.Stringer.
func (c ItemCondition) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known ItemCondition.
func (c ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into an ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}

// ItemMode declares how an item may change hands.
type ItemMode string

const (
	ItemModeExchange ItemMode = "exchange"
	ItemModeBorrow   ItemMode = "borrow"
	ItemModeBoth     ItemMode = "both"
)

var validItemModes = []ItemMode{
	ItemModeExchange,
	ItemModeBorrow,
	ItemModeBoth,
}

// String implements fmt.Stringer.
func (m ItemMode) String() string {
	return string(m)
}

// IsValid reports whether the value matches a known ItemMode.
func (m ItemMode) IsValid() bool {
	for _, candidate := range validItemModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseItemMode converts raw input into an ItemMode.
func ParseItemMode(value string) (ItemMode, error) {
	for _, candidate := range validItemModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item mode %q", value)
}

// Satisfies reports whether an item listed under this mode can serve the
// given request type. Mode "both" serves either side.
func (m ItemMode) Satisfies(t RequestType) bool {
	if m == ItemModeBoth {
		return t == RequestTypeExchange || t == RequestTypeBorrow
	}
	return string(m) == string(t)
}
