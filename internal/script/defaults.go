package script

import "time"

// DefaultSecurityLimits keeps a strategy well inside the server's turn timeout, which
// defaults to 30ms.
var DefaultSecurityLimits = SecurityLimits{
	MaxExecutionTime: 20 * time.Millisecond,
	MaxAllocs:        100_000,
	AllowedPackages: []string{
		"fmt",
		"strings",
		"math",
		"rand",
	},
}

// GetDefaultSecurityLimits returns a copy of the default security limits
func GetDefaultSecurityLimits() SecurityLimits {
	limits := DefaultSecurityLimits
	limits.AllowedPackages = make([]string, len(DefaultSecurityLimits.AllowedPackages))
	copy(limits.AllowedPackages, DefaultSecurityLimits.AllowedPackages)
	return limits
}
