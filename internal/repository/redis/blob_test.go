package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/domain/focus"
	"stocksense/pkg/errors"
)

func TestVersionedBlobRoundTrip(t *testing.T) {
	in := focus.DefaultSettings()

	raw, err := marshalVersioned(in)
	require.NoError(t, err)

	var out focus.Settings
	require.NoError(t, unmarshalVersioned(raw, &out))
	assert.Equal(t, in, out)
}

func TestVersionedBlobCorruptTreatedAsAbsent(t *testing.T) {
	var out focus.Settings

	err := unmarshalVersioned([]byte("{not json"), &out)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = unmarshalVersioned([]byte(`{"version":99,"data":{}}`), &out)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = unmarshalVersioned([]byte(`{"version":1,"data":"not an object"}`), &out)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
