package storage

import (
	"testing"

	"github.com/poiesic/agentstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampID(t *testing.T) {
	out, err := StampID([]byte(`{"name":"a"}`), "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"abc","name":"a"}`, string(out))
	assert.Equal(t, "abc", DocumentID(out))

	out, err = StampID(out, "def")
	require.NoError(t, err)
	assert.Equal(t, "def", DocumentID(out))

	_, err = StampID([]byte(`{`), "x")
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestDocumentID_Missing(t *testing.T) {
	assert.Empty(t, DocumentID([]byte(`{"name":"a"}`)))
}

func TestUnmarshalEntity(t *testing.T) {
	s, err := UnmarshalEntity[core.Strategy]([]byte(`{"_id":"s1","name":"plan"}`))
	require.NoError(t, err)
	assert.Equal(t, "plan", s.Name)
	id, err := s.ID()
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	_, err = UnmarshalEntity[core.Strategy]([]byte(`[]`))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalEntity(t *testing.T) {
	data, err := MarshalEntity(core.NewStrategy("plan", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"plan"}`, string(data))
}
