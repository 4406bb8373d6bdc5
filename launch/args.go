package launch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Strange-Account/go-mc-launcher/manifest"
)

// maxArgumentDepth bounds template flattening. It is a safety bound
// against a malformed self-referential manifest, not a tuning knob.
const maxArgumentDepth = 16

var ErrArgumentDepth = errors.New("argument template nested too deeply")

// expandAll flattens a structured argument template list: each element
// is a literal string or a rule-guarded entry whose value is a string
// or a list of strings, flattened recursively.
func (sz *Synthesizer) expandAll(args []manifest.Argument, ph Placeholders) ([]string, error) {
	var out []string
	for _, a := range args {
		vals, err := sz.expand(a.Raw(), ph, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

func (sz *Synthesizer) expand(raw json.RawMessage, ph Placeholders, depth int) ([]string, error) {
	if depth > maxArgumentDepth {
		return nil, ErrArgumentDepth
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{ph.Render(s)}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			vals, err := sz.expand(item, ph, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
		}
		return out, nil
	}

	var guarded struct {
		Rules []manifest.Rule `json:"rules,omitempty"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &guarded); err == nil && guarded.Value != nil {
		if !manifest.Included(guarded.Rules, sz.osName(), sz.Features) {
			return nil, nil
		}
		return sz.expand(guarded.Value, ph, depth+1)
	}

	return nil, fmt.Errorf("malformed argument template %s", raw)
}

// splitLegacy renders a flat legacy argument string and splits it on
// whitespace after substitution.
func splitLegacy(s string, ph Placeholders) []string {
	return strings.Fields(ph.Render(s))
}
