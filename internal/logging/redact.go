package logging

import (
	"net/url"
	"strings"
)

// SecretKeyPatterns are substrings of env, header and query keys whose
// values are masked. Matching is case-insensitive.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// TokenPrefixes are value prefixes of well-known API tokens. A value with
// one of them is masked whatever its key.
var TokenPrefixes = []string{
	"ghp_",  // GitHub personal access token
	"gho_",  // GitHub OAuth token
	"ghu_",  // GitHub user-to-server token
	"ghs_",  // GitHub server-to-server token
	"ghr_",  // GitHub refresh token
	"sk-",   // OpenAI/Anthropic keys
	"pk-",   // publishable keys
	"AKIA",  // AWS access key
	"xoxb-", // Slack bot token
	"xoxp-", // Slack user token
	"xoxa-", // Slack app token
	"xoxr-", // Slack refresh token
}

// MaskSecrets returns a copy of m with sensitive values masked. It is used
// for both env maps and header maps.
func MaskSecrets(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	masked := make(map[string]string, len(m))
	for k, v := range m {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// MaskValue keeps the last four characters of value. Short values are
// masked entirely.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskURL masks the password of embedded credentials and the values of
// query parameters with secret-looking names. Unparseable input is
// returned unchanged.
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	changed := false
	if parsed.User != nil {
		if password, ok := parsed.User.Password(); ok && password != "" {
			parsed.User = url.UserPassword(parsed.User.Username(), MaskValue(password))
			changed = true
		}
	}

	if parsed.RawQuery != "" {
		query := parsed.Query()
		for k, vs := range query {
			if !ShouldMask(k) {
				continue
			}
			for i := range vs {
				vs[i] = MaskValue(vs[i])
			}
			changed = true
		}
		if changed {
			parsed.RawQuery = query.Encode()
		}
	}

	if !changed {
		return rawURL
	}
	return parsed.String()
}

// ShouldMask reports whether key names a sensitive value.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known token
// prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
