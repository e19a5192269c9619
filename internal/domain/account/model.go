package account

import (
	"fmt"
	"strings"
)

// Handle identifies a resolved player for the remainder of a request.
type Handle struct {
	DisplayName   string
	PlayerID      string
	ProfileIconID int
	AccountLevel  int
}

func (h Handle) Validate() error {
	if strings.TrimSpace(h.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(h.DisplayName) == "" {
		return fmt.Errorf("display name is required")
	}
	if h.AccountLevel < 0 {
		return fmt.Errorf("account level must be >= 0")
	}
	return nil
}

// NormalizeName trims surrounding whitespace. Internal characters are kept as typed.
func NormalizeName(displayName string) string {
	return strings.TrimSpace(displayName)
}

// LookupKey is the case-insensitive identity of a display name.
func LookupKey(displayName string) string {
	return strings.ToLower(NormalizeName(displayName))
}

// SplitRiotID splits "Name#TAG" into its parts. ok is false for bare names.
func SplitRiotID(displayName string) (gameName, tagLine string, ok bool) {
	name := NormalizeName(displayName)
	idx := strings.LastIndex(name, "#")
	if idx <= 0 || idx == len(name)-1 {
		return name, "", false
	}
	return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+1:]), true
}
