// Package model defines the shift catalog, labor regulations and solved
// rosters shared by the scheduling core and its adapters.
package model
