package launch

import (
	"crypto/md5"
	"fmt"

	"github.com/google/uuid"
)

// OfflineUUID derives the stable offline account id for a player name,
// the MD5 of "OfflinePlayer:<name>" with the version and variant bits
// set the way an offline-mode server computes it.
func OfflineUUID(name string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("OfflinePlayer:%s", name)))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		// 16 bytes in, cannot fail.
		panic(err)
	}
	return id.String()
}
