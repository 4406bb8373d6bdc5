// Package launch renders the final process invocation from a merged
// spec, a resolved classpath and a placeholder context.
package launch

import "strings"

// Placeholders maps argument template token names to resolved values.
type Placeholders map[string]string

// Placeholder token names the provisioning layer fills in.
const (
	TokenPlayerName  = "auth_player_name"
	TokenUUID        = "auth_uuid"
	TokenAccessToken = "auth_access_token"
	TokenUserType    = "user_type"
	TokenVersionName = "version_name"
	TokenVersionType = "version_type"
	TokenGameDir     = "game_directory"
	TokenAssetsRoot  = "assets_root"
	TokenAssetsIndex = "assets_index_name"
	TokenNativesDir  = "natives_directory"
	TokenClasspath   = "classpath"
	TokenLauncher    = "launcher_name"
	TokenLauncherVer = "launcher_version"
)

// Render substitutes ${token} occurrences. A token with no entry in the
// context is deliberately left unrendered so the runtime surfaces its
// own error instead of the launcher guessing.
func (p Placeholders) Render(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start
		b.WriteString(s[:start])
		token := s[start+2 : end]
		if value, ok := p[token]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}
