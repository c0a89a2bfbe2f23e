package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Cleanup(func() { Version, BuildTime, GitCommit = "unknown", "unknown", "unknown" })

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", String())

	GitCommit = "abc123"
	BuildTime = "2024-01-01"
	assert.Equal(t, "v1.2.3 (commit abc123, built 2024-01-01)", String())
}
