package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New(".png", ".jpg")
	s.Add(".png")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(".jpg"))
	assert.False(t, s.Has(".pdf"))

	u := s.Union(New(".pdf"))
	assert.Equal(t, []string{".jpg", ".pdf", ".png"}, Sorted(u))
	assert.Equal(t, 2, s.Len(), "union must not mutate the receiver")

	s.Remove(".png")
	s.Remove(".gif")
	assert.Equal(t, []string{".jpg"}, Sorted(s))
}
