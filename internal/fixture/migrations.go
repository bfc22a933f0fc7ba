package fixture

import "embed"

// Migrations embeds this package's goose migration files, so integration
// tests across the module can call fixture.Boot(ctx, fixture.Migrations)
// without knowing the package's on-disk layout.
//
//go:embed migrations/*.sql
var Migrations embed.FS
