package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemcacheService(t *testing.T) {
	svc := NewMemcacheService("localhost:11211")

	key := "test_block_key"
	if err := svc.Set(key, []byte("300"), 2*time.Second); err != nil {
		t.Skip("Memcache is not available, skipping test")
	}

	val, err := svc.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, []byte("300"), val)

	assert.NoError(t, svc.Delete(key))

	_, err = svc.Get(key)
	assert.Error(t, err)
}
