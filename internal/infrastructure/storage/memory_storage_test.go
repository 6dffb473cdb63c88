package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryObjectStorage()

	doc := []byte("%PDF-1.7")
	require.NoError(t, m.Put(ctx, "ACME/po.pdf", doc, "application/pdf"))
	doc[0] = 'X'

	got, err := m.Get(ctx, "ACME/po.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(got))

	ok, err := m.Exists(ctx, "ACME/po.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())

	url, _, err := m.DownloadURL(ctx, "ACME/po.pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://documents/ACME%2Fpo.pdf", url)

	require.NoError(t, m.Delete(ctx, "ACME/po.pdf"))
	_, err = m.Get(ctx, "ACME/po.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.ErrorIs(t, m.Put(ctx, "", nil, ""), errKeyRequired)
}
