package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

type testScope string

var scopes = NewEnum[testScope]("scope", "currentFile", "allFiles", "changed")

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"currentFile", "currentfile"},
		{"  current-file ", "currentfile"},
		{"Current File", "currentfile"},
		{"ALL_FILES", "allfiles"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.input))
		})
	}
}

func TestEnum_Lookup(t *testing.T) {
	v, ok := scopes.Lookup("all-files")
	require.True(t, ok)
	assert.Equal(t, testScope("allFiles"), v)

	_, ok = scopes.Lookup("everything")
	assert.False(t, ok)
}

func TestEnum_Normalize(t *testing.T) {
	assert.Equal(t, testScope("currentFile"), scopes.Normalize("CURRENTFILE"))
	assert.Equal(t, testScope("bogus"), scopes.Normalize("bogus"))
}

func TestEnum_Parse(t *testing.T) {
	v, err := scopes.Parse(" Changed ")
	require.NoError(t, err)
	assert.Equal(t, testScope("changed"), v)

	_, err = scopes.Parse("bogus")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Contains(t, err.Error(), "allFiles, changed, currentFile")
}

func TestEnum_Values(t *testing.T) {
	values := scopes.Values()
	assert.Equal(t, []string{"allFiles", "changed", "currentFile"}, values)
	values[0] = "mutated"
	assert.Equal(t, "allFiles", scopes.Values()[0])
}
