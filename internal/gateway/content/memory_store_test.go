package content

import (
	"context"
	"testing"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	articleID = "4a0e5b8c-5b4f-4c39-9d0e-2c0f3c6a1f11"
	tagID     = "9f1d7c3e-0a7b-4b0e-8d55-6f3a2b1c0d22"
)

const testSeed = `
entities:
  - id: 4a0e5b8c-5b4f-4c39-9d0e-2c0f3c6a1f11
    type: node--article
    langcode: en
    label: First draft
    revisionId: 1
    attributes:
      title: First draft
  - id: 4a0e5b8c-5b4f-4c39-9d0e-2c0f3c6a1f11
    type: node--article
    langcode: en
    label: Published
    revisionId: 2
    attributes:
      title: Published
    relationships:
      field_tags:
        - {type: taxonomy_term--tags, id: 9f1d7c3e-0a7b-4b0e-8d55-6f3a2b1c0d22}
  - id: 4a0e5b8c-5b4f-4c39-9d0e-2c0f3c6a1f11
    type: node--article
    langcode: en
    label: Forward draft
    revisionId: 3
    defaultRevision: false
  - id: 9f1d7c3e-0a7b-4b0e-8d55-6f3a2b1c0d22
    type: taxonomy_term--tags
    langcode: en
    label: Go
`

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.ApplySeed([]byte(testSeed)))
	return s
}

func TestMemoryStoreRevisionSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	def, err := s.Load(ctx, "node--article", articleID, Version{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), def.RevisionID)
	assert.True(t, def.IsDefaultRevision())
	assert.False(t, def.IsLatestRevision())

	wc, err := s.Load(ctx, "node--article", articleID, Version{Kind: VersionWorkingCopy})
	require.NoError(t, err)
	assert.Equal(t, int64(3), wc.RevisionID)
	assert.False(t, wc.IsDefaultRevision())
	assert.True(t, wc.IsLatestRevision())

	first, err := s.Load(ctx, "node--article", articleID, Version{Kind: VersionByID, RevisionID: 1})
	require.NoError(t, err)
	assert.Equal(t, "First draft", first.Label)
	assert.False(t, first.IsDefaultRevision())

	_, err = s.Load(ctx, "node--article", articleID, Version{Kind: VersionByID, RevisionID: 9})
	assert.True(t, common.IsErrNotFound(err))
	_, err = s.Load(ctx, "node--page", articleID, Version{})
	assert.True(t, common.IsErrNotFound(err))
}

func TestMemoryStoreListAndLoadMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	list, err := s.List(ctx, "node--article")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].RevisionID)

	related, err := s.LoadMany(ctx, []Identifier{
		{Type: "taxonomy_term--tags", ID: tagID},
		{Type: "taxonomy_term--tags", ID: "00000000-0000-0000-0000-000000000000"},
	})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Go", related[0].Label)
}

func TestMemoryStorePutAssignsIDsAndDemotesDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	first := s.Put(Entity{Type: "node--page", Label: "v1", DefaultRevision: true})
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(1), first.RevisionID)

	second := s.Put(Entity{ID: first.ID, Type: "node--page", Label: "v2", DefaultRevision: true})
	assert.Equal(t, int64(2), second.RevisionID)

	def, err := s.Load(ctx, "node--page", first.ID, Version{})
	require.NoError(t, err)
	assert.Equal(t, "v2", def.Label)

	old, err := s.Load(ctx, "node--page", first.ID, Version{Kind: VersionByID, RevisionID: 1})
	require.NoError(t, err)
	assert.False(t, old.DefaultRevision)
}

func TestApplySeedRejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	assert.Error(t, s.ApplySeed([]byte("entities:\n  - type: article\n")))
	assert.Error(t, s.ApplySeed([]byte("entities:\n  - type: node--article\n    id: not-a-uuid\n")))
}

func TestMemoryStoreWithoutDefaultRevision(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.revisions["node--article"] = map[string][]*Entity{
		articleID: {
			{ID: articleID, Type: "node--article", RevisionID: 1},
			{ID: articleID, Type: "node--article", RevisionID: 2, LatestRevision: true},
		},
	}

	_, err := s.Load(ctx, "node--article", articleID, Version{})
	assert.True(t, common.IsErrNotFound(err))

	e, err := s.Load(ctx, "node--article", articleID, Version{Kind: VersionWorkingCopy})
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.RevisionID)

	list, err := s.List(ctx, "node--article")
	require.NoError(t, err)
	assert.Empty(t, list)
}
