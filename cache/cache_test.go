package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Controllers hold a *Store that is nil when redis is not configured; every
// method must degrade to a miss or a no-op instead of panicking.
func Test_NilStore_IsSafe(t *testing.T) {
	var s *Store
	ctx := context.Background()

	payload, ok := s.Get(ctx, BooksView)
	assert.False(t, ok)
	assert.Nil(t, payload)

	s.Set(ctx, BooksView, []byte(`[]`))
	s.Invalidate(ctx)
}

func Test_KeyNamespacing(t *testing.T) {
	assert.Equal(t, "library:view:books", key(BooksView))
	assert.Equal(t, "library:view:loans", key(LoansView))
}
