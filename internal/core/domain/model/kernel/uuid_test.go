package kernel_test

import (
	"testing"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	require.NoError(t, id1.Validate())
	assert.False(t, id1.IsEqual(id2))
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id1.String())
}

func TestUUIDFromString(t *testing.T) {
	const valid = "550e8400-e29b-41d4-a716-446655440000"

	t.Run("valid forms", func(t *testing.T) {
		for _, in := range []string{valid, "{" + valid + "}", "urn:uuid:" + valid, "550e8400e29b41d4a716446655440000"} {
			id, err := kernel.UUIDFromString(in)
			require.NoError(t, err, in)
			assert.Equal(t, valid, id.String())
		}
	})

	t.Run("malformed input is a validation error", func(t *testing.T) {
		for _, in := range []string{"", "not-a-uuid", "550e8400-e29b-41d4-a716"} {
			_, err := kernel.UUIDFromString(in)
			require.Error(t, err, in)
			assert.Contains(t, err.Error(), "invalid UUID format")
			assert.ErrorIs(t, err, errs.ErrValidation)
		}
	})

	t.Run("nil uuid is rejected", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
	})
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := kernel.ParseOptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	want := kernel.NewUUID()
	id, err = kernel.ParseOptionalUUID(want.String())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.True(t, want.IsEqual(*id))

	_, err = kernel.ParseOptionalUUID("drone-7")
	require.Error(t, err)
}

func TestUUIDFromBytes(t *testing.T) {
	id := kernel.NewUUID()
	raw := id.Bytes()

	restored, err := kernel.UUIDFromBytes(raw[:])
	require.NoError(t, err)
	assert.True(t, id.IsEqual(restored))

	_, err = kernel.UUIDFromBytes([]byte{0x55})
	require.Error(t, err)

	_, err = kernel.UUIDFromBytes(make([]byte, 16))
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
}

func TestUUID_BytesIsACopy(t *testing.T) {
	original := kernel.NewUUID()
	s := original.String()

	b := original.Bytes()
	for i := range b {
		b[i] = 0xFF
	}

	assert.Equal(t, s, original.String())
}

func TestEqualPtr(t *testing.T) {
	a := kernel.NewUUID()
	b := a
	c := kernel.NewUUID()

	assert.True(t, kernel.EqualPtr(nil, nil))
	assert.True(t, kernel.EqualPtr(&a, &b))
	assert.False(t, kernel.EqualPtr(&a, &c))
	assert.False(t, kernel.EqualPtr(&a, nil))
	assert.False(t, kernel.EqualPtr(nil, &c))
}
