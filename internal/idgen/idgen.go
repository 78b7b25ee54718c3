// Package idgen issues opaque identifiers with a human-readable prefix
// ("slot_…", "ts_…", "u_…"). Uniqueness rides on UUIDv4.
package idgen

import "github.com/google/uuid"

func New(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "_" + uuid.NewString()
}
