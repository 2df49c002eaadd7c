package buildstamp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	defer func(v, p, r string) { VersionNumber, PrereleaseTag, ReleaseTag = v, p, r }(VersionNumber, PrereleaseTag, ReleaseTag)

	VersionNumber, PrereleaseTag, ReleaseTag = "", "", ""
	assert.Equal(t, "0.0.0", Get().Version())

	VersionNumber = "0.3.0"
	assert.Equal(t, "0.3.0", Get().Version())

	PrereleaseTag, ReleaseTag = "dev", "a968903-dirty"
	assert.Equal(t, "0.3.0-dev+a968903-dirty", Get().Version())

	var buf bytes.Buffer
	PrintVerboseVersion(&buf)
	assert.Contains(t, buf.String(), "0.3.0-dev+a968903-dirty")
}

func TestIsDevBinary(t *testing.T) {
	defer func(c string) { CicdBuildRelease = c }(CicdBuildRelease)

	CicdBuildRelease = ""
	assert.True(t, Get().IsDevBinary())
	CicdBuildRelease = "prod"
	assert.False(t, Get().IsDevBinary())
	CicdBuildRelease = "dev"
	assert.True(t, Get().IsDevBinary())
}
