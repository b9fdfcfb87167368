// Package db provides the embedded catalog schema and the default menu.
package db

import _ "embed"

// Schema contains the idempotent DDL for the catalog tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Catalog is the default menu as a JSON document.
//
//go:embed seed/catalog.json
var Catalog []byte
