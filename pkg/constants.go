package rmdupes

import "strings"

// Hash type constants
const (
	HashTypeSHA1   uint16 = 1 // SHA-1 (20 bytes)
	HashTypeSHA256 uint16 = 2 // SHA-256 (32 bytes)
	HashTypeSHA512 uint16 = 3 // SHA-512 (64 bytes)
)

// Hash size constants
const (
	HashSizeSHA1   = 20 // SHA-1 hash size in bytes
	HashSizeSHA256 = 32 // SHA-256 hash size in bytes
	HashSizeSHA512 = 64 // SHA-512 hash size in bytes
)

// HashTypeName returns the human-readable name for a hash type
func HashTypeName(hashType uint16) string {
	switch hashType {
	case HashTypeSHA1:
		return "sha1"
	case HashTypeSHA256:
		return "sha256"
	case HashTypeSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// HashTypeFromName returns the hash type constant from a name (case-insensitive)
func HashTypeFromName(name string) (uint16, bool) {
	switch strings.ToLower(name) {
	case "sha1":
		return HashTypeSHA1, true
	case "sha256":
		return HashTypeSHA256, true
	case "sha512":
		return HashTypeSHA512, true
	default:
		return 0, false
	}
}

// Registry phase constants. A registry moves strictly forward through these;
// see ContentRegistry.Phase.
const (
	PhaseEmpty     = "empty"
	PhaseScanned   = "scanned"
	PhasePruned    = "pruned"
	PhaseReordered = "reordered"
	PhaseConsumed  = "consumed"
)

// Skiplist context for groups inserted during a scan
const ScanContext = "scan"

// Default configuration values
const (
	DefaultHashAlgorithm = "sha1"
	DefaultHashWorkers   = 4
	DefaultHashBuffer    = "2M"
)
