package scanner

import (
	"regexp"
	"strings"
)

// reURLHost captures the host portion of an http(s) URL, tolerating
// userinfo before the host and stopping at the first delimiter that ends
// it (path, query, fragment, port, or whitespace).
var reURLHost = regexp.MustCompile(`(?i)https?://(?:[^@/?#\s]+@)?([^/?#:\s]+)`)

// extractHosts returns every URL host found in line, lowercased.
func extractHosts(line string) []string {
	var hosts []string
	for _, m := range reURLHost.FindAllStringSubmatch(line, -1) {
		hosts = append(hosts, strings.ToLower(m[1]))
	}
	return hosts
}

// hostAllowed reports whether host matches an allowlist entry, either
// exactly or as a subdomain. "api.github.com" matches the entry
// "github.com"; "evilgithub.com" does not. Entries are expected lowercase;
// empty entries are ignored.
func hostAllowed(host string, allowed []string) bool {
	for _, entry := range allowed {
		if entry == "" {
			continue
		}
		if host == entry {
			return true
		}
		if prefix, ok := strings.CutSuffix(host, entry); ok && strings.HasSuffix(prefix, ".") {
			return true
		}
	}
	return false
}

// urlHostsExempt reports whether line should be exempt from a
// network-allowlist rule: either every extractable host is trusted, or the
// line carries no extractable host at all and there is no target to judge.
func urlHostsExempt(line string, allowed []string) bool {
	hosts := extractHosts(line)
	if len(hosts) == 0 {
		return true
	}
	for _, h := range hosts {
		if !hostAllowed(h, allowed) {
			return false
		}
	}
	return true
}
