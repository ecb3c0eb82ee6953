package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	// vendedor has ventas but not usuarios
	assert.True(t, Authorize([]string{"vendedor"}, CapSales))
	assert.False(t, Authorize([]string{"vendedor"}, CapUsers))

	// admin's "*" grants any capability
	assert.True(t, Authorize([]string{"admin"}, CapUsers))
	assert.True(t, Authorize([]string{"admin"}, "anything-at-all"))

	// any matching role in the set is enough
	assert.True(t, Authorize([]string{"envios", "rrhh"}, CapShifts))

	// unknown roles and empty sets deny
	assert.False(t, Authorize([]string{"practicante"}, CapSales))
	assert.False(t, Authorize(nil, CapSales))
}

func TestParsePermissions(t *testing.T) {
	perms, err := ParsePermissions(`["ventas","clientes"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"ventas", "clientes"}, perms)

	perms, err = ParsePermissions("")
	require.NoError(t, err)
	assert.Empty(t, perms)

	// corruption must surface, not silently yield an empty set
	_, err = ParsePermissions(`{"not":"an array"}`)
	assert.Error(t, err)

	_, err = ParsePermissions(`ventas,clientes`)
	assert.Error(t, err)
}

func TestEncodePermissionsRoundTrip(t *testing.T) {
	raw, err := EncodePermissions([]string{CapReturns, CapSales})
	require.NoError(t, err)

	perms, err := ParsePermissions(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{CapReturns, CapSales}, perms)

	raw, err = EncodePermissions(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}
