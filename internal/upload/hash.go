package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// hashChunk bounds the work done between cancellation checks.
const hashChunk = 64 << 10

// SHA1Hex returns the lowercase hex SHA-1 of data. The digest is computed on a
// separate goroutine in chunks and abandoned as soon as ctx is done.
func SHA1Hex(ctx context.Context, data []byte) (string, error) {
	done := make(chan string, 1)
	go func() {
		h := sha1.New()
		for off := 0; off < len(data); off += hashChunk {
			if ctx.Err() != nil {
				return
			}
			end := min(off+hashChunk, len(data))
			h.Write(data[off:end])
		}
		done <- hex.EncodeToString(h.Sum(nil))
	}()

	select {
	case sum := <-done:
		return sum, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
