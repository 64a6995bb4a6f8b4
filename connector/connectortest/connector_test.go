package connectortest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/ooi"
)

var validTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestConnector_GetAndRecord(t *testing.T) {
	ref := ooi.MustParse("Network|internet")
	c := New().AddObjects(ooi.NewObject(ref, map[string]any{"name": "internet"}))

	obj, err := c.Get(context.Background(), ref, validTime)
	require.NoError(t, err)
	assert.Equal(t, ref, obj.Reference())

	_, err = c.Get(context.Background(), ooi.MustParse("Network|elsewhere"), validTime)
	assert.True(t, connector.IsNotFound(err))

	calls := c.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, connector.MethodGet, calls[0].Method)
	assert.Equal(t, ref, calls[0].Reference)
	assert.Equal(t, validTime, calls[0].ValidTime)
}

func TestConnector_List(t *testing.T) {
	c := New().AddObjects(
		ooi.NewObject(ooi.MustParse("Network|b"), nil),
		ooi.NewObject(ooi.MustParse("Network|a"), nil),
		ooi.NewObject(ooi.MustParse("Hostname|a|example.com"), nil),
	)

	page, err := c.List(context.Background(), []string{ooi.TypeNetwork}, validTime, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Empty(t, page.Items)

	page, err = c.List(context.Background(), nil, validTime, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Network|a", page.Items[0].PrimaryKey())
	assert.Equal(t, "Network|b", page.Items[1].PrimaryKey())
}

func TestConnector_GetTree(t *testing.T) {
	ref := ooi.MustParse("Network|internet")
	c := New().AddObjects(ooi.NewObject(ref, nil))

	tree, err := c.GetTree(context.Background(), ref, 2, validTime)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	custom := &ooi.ReferenceTree{Root: ooi.ReferenceNode{Reference: ref}, Store: map[string]*ooi.Object{}}
	c.SetTree(custom)
	tree, err = c.GetTree(context.Background(), ref, 2, validTime)
	require.NoError(t, err)
	assert.Same(t, custom, tree)
	assert.Equal(t, 2, c.Calls()[1].Depth)
}

func TestConnector_FailOn(t *testing.T) {
	ref := ooi.MustParse("Network|internet")
	boom := errors.New("connection refused")
	c := New().FailOn(connector.MethodListOrigins, boom)

	_, err := c.ListOrigins(context.Background(), ref, validTime)
	assert.ErrorIs(t, err, boom)

	c.FailOn(connector.MethodListOrigins, nil)
	origins, err := c.ListOrigins(context.Background(), ref, validTime)
	require.NoError(t, err)
	assert.Empty(t, origins)
	assert.Equal(t, 2, c.CallCount(connector.MethodListOrigins))
}

func TestConnector_SaveScanProfile(t *testing.T) {
	ref := ooi.MustParse("Network|internet")
	c := New()

	require.NoError(t, c.SaveScanProfile(context.Background(), ooi.NewDeclaredScanProfile(ref, ooi.L2, validTime), validTime))
	saved := c.SavedProfiles()
	require.Len(t, saved, 1)
	assert.Equal(t, ooi.L2, saved[0].Level)
}
