package store

import (
	cryptorand "crypto/rand"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Account and round IDs share one monotonic source so IDs minted in the
// same millisecond still sort in creation order.
var (
	idEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	idEntropyMu sync.Mutex
)

func NewID() string {
	idEntropyMu.Lock()
	defer idEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}

// NewToken mints a session token. Unlike NewID its random part is not
// derived from the previous value, so tokens cannot be predicted.
func NewToken() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), cryptorand.Reader).String()
}
