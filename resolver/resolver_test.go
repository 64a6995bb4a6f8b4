package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/connector/connectortest"
	"github.com/zero-day-ai/inventory/ooi"
)

var (
	validTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	hostRef   = ooi.MustParse("Hostname|internet|example.com")
	netRef    = ooi.MustParse("Network|internet")
)

func fixture() (*connectortest.Connector, *ooi.Object) {
	host := ooi.NewObject(hostRef, map[string]any{
		"name":    "example.com",
		"network": netRef.String(),
	})
	network := ooi.NewObject(netRef, map[string]any{"name": "internet"})

	conn := connectortest.New().AddObjects(host, network)
	conn.SetTree(&ooi.ReferenceTree{
		Root: ooi.ReferenceNode{
			Reference: hostRef,
			Children:  map[string][]ooi.ReferenceNode{"network": {{Reference: netRef}}},
		},
		Store: map[string]*ooi.Object{
			hostRef.String(): host,
			netRef.String():  network,
		},
	})
	return conn, host
}

func TestResolve_DepthOneUsesGet(t *testing.T) {
	conn, host := fixture()
	r := New(conn)

	obj, err := r.Resolve(context.Background(), hostRef, 1, validTime)
	require.NoError(t, err)
	assert.Same(t, host, obj)

	assert.Equal(t, 1, conn.CallCount(connector.MethodGet))
	assert.Zero(t, conn.CallCount(connector.MethodGetTree))

	tree := r.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, hostRef, tree.Root.Reference)
	assert.Equal(t, map[string]*ooi.Object{hostRef.String(): host}, tree.Store)
}

func TestResolve_DeepReturnsRootAndKeepsTree(t *testing.T) {
	conn, host := fixture()
	r := New(conn)

	obj, err := r.Resolve(context.Background(), hostRef, 2, validTime)
	require.NoError(t, err)
	assert.Same(t, host, obj)

	calls := conn.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, connector.MethodGetTree, calls[0].Method)
	assert.Equal(t, 2, calls[0].Depth)

	tree := r.Tree()
	require.NotNil(t, tree)
	assert.Len(t, tree.Store, 2)
}

func TestResolve_NotFound(t *testing.T) {
	r := New(connectortest.New())

	_, err := r.Resolve(context.Background(), hostRef, 1, validTime)
	assert.True(t, connector.IsNotFound(err))

	_, err = r.Resolve(context.Background(), hostRef, 3, validTime)
	assert.True(t, connector.IsNotFound(err))
}

func TestResolve_RootMissingFromStore(t *testing.T) {
	conn := connectortest.New()
	conn.SetTree(&ooi.ReferenceTree{
		Root:  ooi.ReferenceNode{Reference: hostRef},
		Store: map[string]*ooi.Object{netRef.String(): ooi.NewObject(netRef, nil)},
	})

	_, err := New(conn).Resolve(context.Background(), hostRef, 2, validTime)
	assert.ErrorIs(t, err, ooi.ErrRootMissing)
}

func TestResolve_InvalidDepth(t *testing.T) {
	conn, _ := fixture()

	_, err := New(conn).Resolve(context.Background(), hostRef, 0, validTime)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	assert.Empty(t, conn.Calls())
}

func TestResolve_TreeFollowsLastResolution(t *testing.T) {
	conn, _ := fixture()
	otherRef := ooi.MustParse("Hostname|internet|other.com")
	other := ooi.NewObject(otherRef, map[string]any{"name": "other.com"})
	conn.AddObjects(other)
	r := New(conn)

	_, err := r.Resolve(context.Background(), hostRef, 2, validTime)
	require.NoError(t, err)
	require.Equal(t, hostRef, r.Tree().Root.Reference)

	obj, err := r.Resolve(context.Background(), otherRef, 1, validTime)
	require.NoError(t, err)
	assert.Same(t, other, obj)

	tree := r.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, otherRef, tree.Root.Reference)
	assert.Len(t, tree.Store, 1)
	assert.NotContains(t, tree.Store, hostRef.String())

	_, err = r.Resolve(context.Background(), ooi.MustParse("Hostname|internet|missing.com"), 1, validTime)
	require.Error(t, err)
	assert.Nil(t, r.Tree())
}
