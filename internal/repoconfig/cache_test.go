package repoconfig

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheEvictsLeastAccessed(t *testing.T) {
	c := NewCache[string, int](3)
	c.Put("old-but-popular", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	for range 5 {
		_, ok := c.Get("old-but-popular")
		require.True(t, ok)
	}
	_, _ = c.Get("c")

	c.Put("d", 4)
	require.Equal(t, 3, c.Len())
	_, ok := c.Get("b")
	require.False(t, ok, "b has the fewest accesses")
	_, ok = c.Get("old-but-popular")
	require.True(t, ok, "an entry inserted first but accessed often is kept")
}

func TestCacheTieEvictsEarliest(t *testing.T) {
	c := NewCache[string, int](2)
	c.Put("first", 1)
	c.Put("second", 2)
	c.Put("third", 3)

	require.Equal(t, -1, c.Hits("first"))
	require.Equal(t, 0, c.Hits("second"))
	require.Equal(t, 0, c.Hits("third"))
}

func TestCacheReplaceKeepsCount(t *testing.T) {
	c := NewCache[string, int](2)
	c.Put("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	c.Put("a", 10)

	require.Equal(t, 2, c.Hits("a"))
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 10, v)

	c.Delete("a")
	require.Equal(t, 0, c.Len())
	c.Put("b", 1)
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestCacheConcurrentUse(t *testing.T) {
	c := NewCache[int, int](16)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				c.Put((w*100+i)%32, i)
				c.Get(i % 32)
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 16)
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := NewCache[string, int](0)
	for i := range DefaultCacheSize + 5 {
		c.Put(string(rune('a'+i%26))+string(rune(i)), i)
	}
	require.Equal(t, DefaultCacheSize, c.Len())
}
