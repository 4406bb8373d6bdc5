package manifest

// Rule actions.
const (
	ActionAllow    = "allow"
	ActionDisallow = "disallow"
)

// Rule is a conditional inclusion entry. Rules are evaluated in order
// and the first matching rule decides.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule matches on the manifest OS name (linux, windows, osx).
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Included evaluates a rule list for the given OS and feature set. No
// rules means always included. The first rule whose conditions match
// determines the outcome via its action; if no rule matches the default
// is excluded. A feature-conditioned rule never matches when the caller
// supplies no feature set, so callers evaluating outside a feature-aware
// launch context treat such rules as non-matches rather than disallows.
func Included(rules []Rule, osName string, features map[string]bool) bool {
	if len(rules) == 0 {
		return true
	}
	for _, r := range rules {
		if !r.matches(osName, features) {
			continue
		}
		return r.Action == ActionAllow
	}
	return false
}

func (r Rule) matches(osName string, features map[string]bool) bool {
	if r.OS != nil && r.OS.Name != "" && r.OS.Name != osName {
		return false
	}
	if len(r.Features) > 0 {
		if features == nil {
			return false
		}
		for name, want := range r.Features {
			if features[name] != want {
				return false
			}
		}
	}
	return true
}
