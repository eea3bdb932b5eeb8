package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

var (
	ipv4Regex = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	// Simplified: 3-8 colon-separated groups of up to four hex digits, "::" allowed
	ipv6Regex = regexp.MustCompile(`^([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}$`)
)

// allowedKeyTypes lists the SSH public key algorithms accepted for resource access
var allowedKeyTypes = map[string]bool{
	ssh.KeyAlgoED25519:  true,
	ssh.KeyAlgoRSA:      true,
	ssh.KeyAlgoECDSA256: true,
	ssh.KeyAlgoECDSA384: true,
	ssh.KeyAlgoECDSA521: true,
}

// IsValidIP accepts dotted-quad IPv4 with octets in [0,255] and
// colon-grouped IPv6
func IsValidIP(ip string) bool {
	if m := ipv4Regex.FindStringSubmatch(ip); m != nil {
		for _, octet := range m[1:] {
			n, err := strconv.Atoi(octet)
			if err != nil || n > 255 {
				return false
			}
		}
		return true
	}
	return ipv6Regex.MatchString(ip)
}

// IsValidPort reports whether port is in [1,65535]
func IsValidPort(port int) bool {
	return port >= 1 && port <= 65535
}

// PublicKeyInfo describes a parsed SSH public key
type PublicKeyInfo struct {
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
	Comment     string `json:"comment,omitempty"`
}

// ValidateSSHPublicKey parses an authorized_keys style public key
func ValidateSSHPublicKey(key string) (*PublicKeyInfo, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("public key cannot be empty")
	}
	if strings.Contains(key, "PRIVATE KEY") {
		return nil, fmt.Errorf("a private key was supplied where a public key is expected")
	}

	pub, comment, _, rest, err := ssh.ParseAuthorizedKey([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("malformed public key: %w", err)
	}
	if len(strings.TrimSpace(string(rest))) > 0 {
		return nil, fmt.Errorf("expected a single public key, found trailing data")
	}
	if !allowedKeyTypes[pub.Type()] {
		return nil, fmt.Errorf("unsupported public key type %q", pub.Type())
	}

	return &PublicKeyInfo{
		Type:        pub.Type(),
		Fingerprint: ssh.FingerprintSHA256(pub),
		Comment:     comment,
	}, nil
}
