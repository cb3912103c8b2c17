package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	tests := []struct {
		name string
		set  string
		want string
	}{
		{"dev build", "", "insectopedia dev "},
		{"release", "v1.2.0", "insectopedia v1.2.0 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version = "dev"
			SetVersion(tt.set)

			out, err := execute(t, nil, "", "version")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
		})
	}
}

func TestVersion_RejectsArgs(t *testing.T) {
	_, err := execute(t, nil, "", "version", "extra")
	assert.Error(t, err)
}
