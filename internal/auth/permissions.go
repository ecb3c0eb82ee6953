package auth

import (
	"encoding/json"
	"fmt"
)

// Capability tokens. "*" grants everything.
const (
	CapAll       = "*"
	CapSales     = "ventas"
	CapClients   = "clientes"
	CapProducts  = "productos"
	CapOrders    = "pedidos"
	CapSuppliers = "proveedores"
	CapShipping  = "envios"
	CapReturns   = "devoluciones"
	CapUsers     = "usuarios"
	CapAttend    = "asistencias"
	CapShifts    = "turnos"
)

// rolePermissions is the single authoritative role -> capability mapping.
// Every component gates through Authorize; nothing re-declares this table.
var rolePermissions = map[string][]string{
	"admin":        {CapAll},
	"vendedor":     {CapSales, CapClients, CapProducts},
	"inventario":   {CapProducts, CapOrders, CapSuppliers},
	"envios":       {CapShipping, CapOrders},
	"devoluciones": {CapReturns, CapSales},
	"rrhh":         {CapUsers, CapAttend, CapShifts},
}

// Authorize reports whether any of the given roles carries the required
// capability. Pure function, no I/O.
func Authorize(roleNames []string, capability string) bool {
	for _, name := range roleNames {
		for _, cap := range rolePermissions[name] {
			if cap == CapAll || cap == capability {
				return true
			}
		}
	}
	return false
}

// PermissionsForRole returns the capability set of a known role name.
// Unknown roles get an empty set.
func PermissionsForRole(name string) []string {
	perms := rolePermissions[name]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// ParsePermissions decodes a role's JSON-encoded capability array.
// Corrupt data is an error: silently defaulting to an empty set would lock
// out legitimate actions with no signal anywhere.
func ParsePermissions(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil, fmt.Errorf("corrupt permissions payload: %w", err)
	}
	return perms, nil
}

// EncodePermissions is the inverse of ParsePermissions, used when storing
// a role.
func EncodePermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
