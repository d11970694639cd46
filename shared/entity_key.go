package shared

import (
	"fmt"
	"github.com/spaolacci/murmur3"
)

// EntityKey hashes a remote identifier into the compact surrogate used for
// indexing. The remote ID columns stay authoritative; the hash only narrows
// the index scan, so a collision costs one extra row comparison.
func EntityKey(platform, domain, remoteID string) int64 {
	h := murmur3.Sum64([]byte(fmt.Sprintf("%s|%s|%s", platform, domain, remoteID)))
	return int64(h)
}
