package testutil

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex returns the hex MD5 of data, matching the engine's content digests
// and single-part S3 ETags.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
