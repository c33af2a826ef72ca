package collab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaborators(t *testing.T) {
	b := NewBoard("")
	require.NoError(t, b.AddCollaborator("a@x.io"))
	require.NoError(t, b.AddCollaborator("b@x.io"))

	assert.ErrorIs(t, b.AddCollaborator("a@x.io"), ErrDuplicateCollaborator)
	assert.ErrorIs(t, b.AddCollaborator("nobody"), ErrInvalidEmail)
	assert.ErrorIs(t, b.AddCollaborator(""), ErrInvalidEmail)
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, b.Collaborators())

	assert.True(t, b.RemoveCollaborator("a@x.io"))
	assert.False(t, b.RemoveCollaborator("a@x.io"))
	assert.Equal(t, []string{"b@x.io"}, b.Collaborators())
}

func TestCollaboratorsReturnsCopy(t *testing.T) {
	b := NewBoard("")
	require.NoError(t, b.AddCollaborator("a@x.io"))
	got := b.Collaborators()
	got[0] = "mutated"
	assert.Equal(t, []string{"a@x.io"}, b.Collaborators())
}

func TestComments(t *testing.T) {
	b := NewBoard("  ")
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	b.now = func() time.Time { return fixed }

	c1, err := b.AddComment("  first look  ")
	require.NoError(t, err)
	assert.Equal(t, "first look", c1.Text)
	assert.Equal(t, DefaultAuthor, c1.Author)
	assert.Equal(t, "2024-03-01T11:00:00Z", c1.Timestamp.Format(time.RFC3339))
	assert.Len(t, c1.ID, 36)

	_, err = b.AddComment("   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	c2, err := b.AddComment("second")
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
	require.Len(t, b.Comments(), 2)

	assert.True(t, b.DeleteComment(c1.ID))
	assert.False(t, b.DeleteComment(c1.ID))
	assert.False(t, b.DeleteComment(""))
	assert.Equal(t, []Comment{c2}, b.Comments())

	assert.True(t, b.DeleteComment(c2.ID[:8]))
	assert.Empty(t, b.Comments())
}

func TestCommentAuthor(t *testing.T) {
	b := NewBoard("Ana")
	c, err := b.AddComment("hi")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Author)
	assert.Equal(t, "Ana", b.Author())
}
