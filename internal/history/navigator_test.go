package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigator_UpAndDown(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "id-1", "id-2", "id-3")
	for _, text := range []string{"one", "two", "three"} {
		_, _, err := s.Append(ctx, "main", text)
		require.NoError(t, err)
	}

	nav, err := s.Navigator(ctx, "main", 0)
	require.NoError(t, err)
	assert.True(t, nav.AtDraft())

	text, ok := nav.Previous("draft text")
	assert.True(t, ok)
	assert.Equal(t, "three", text)

	text, _ = nav.Previous("three")
	assert.Equal(t, "two", text)
	text, _ = nav.Previous("two")
	assert.Equal(t, "one", text)

	_, ok = nav.Previous("one")
	assert.False(t, ok, "stops at oldest")

	text, ok = nav.Next()
	assert.True(t, ok)
	assert.Equal(t, "two", text)
	text, _ = nav.Next()
	assert.Equal(t, "three", text)

	text, ok = nav.Next()
	assert.True(t, ok)
	assert.Equal(t, "draft text", text)
	assert.True(t, nav.AtDraft())

	_, ok = nav.Next()
	assert.False(t, ok)
}

func TestNavigator_Empty(t *testing.T) {
	nav := NewNavigator(nil)

	_, ok := nav.Previous("x")
	assert.False(t, ok)
	_, ok = nav.Next()
	assert.False(t, ok)
}

func TestNavigator_Reset(t *testing.T) {
	nav := NewNavigator([]Entry{{Text: "b"}, {Text: "a"}})

	text, _ := nav.Previous("draft")
	assert.Equal(t, "b", text)

	nav.Reset()
	assert.True(t, nav.AtDraft())
	text, _ = nav.Previous("")
	assert.Equal(t, "b", text)
	text, _ = nav.Next()
	assert.Equal(t, "", text)
}
