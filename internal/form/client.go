package form

import "strings"

// UnknownClient is the identifier shared by requests that carry no
// forwarding headers. Behind the intended reverse-proxy deployment the
// headers are always present.
const UnknownClient = "unknown"

// ClientIdentifier derives the rate-limit partition key from forwarding
// headers: the first X-Forwarded-For hop, then X-Real-Ip, then
// UnknownClient.
func ClientIdentifier(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	return UnknownClient
}
