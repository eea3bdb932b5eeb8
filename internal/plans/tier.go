// Package plans decides whether a subscription plan entitles an account to
// rent a resource.
package plans

import "strings"

// AccessTier is an ordered plan access level. Higher values grant more.
type AccessTier int

const (
	AccessNone AccessTier = iota
	AccessEntry
	AccessStandard
	AccessAll
)

var accessTierNames = map[AccessTier]string{
	AccessNone:     "none",
	AccessEntry:    "entry",
	AccessStandard: "standard",
	AccessAll:      "all",
}

func (t AccessTier) String() string {
	if name, ok := accessTierNames[t]; ok {
		return name
	}
	return "none"
}

// Rank returns the numeric rank of the tier: none(0) < entry(1) < standard(2) < all(3)
func (t AccessTier) Rank() int {
	return int(t)
}

// Meets reports whether t grants at least the required tier
func (t AccessTier) Meets(required AccessTier) bool {
	return t.Rank() >= required.Rank()
}

// ResolveAccessTier parses a plan access string. Names and numeric ranks are
// both accepted; anything unrecognized resolves to AccessNone.
func ResolveAccessTier(s string) AccessTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "basic", "1":
		return AccessEntry
	case "standard", "2":
		return AccessStandard
	case "all", "3":
		return AccessAll
	default:
		return AccessNone
	}
}
