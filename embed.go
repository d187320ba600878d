package nightfall

import (
	_ "embed"
)

// Embed the role catalog and default role templates
//
//go:embed static/roles.yaml
var RoleCatalogYAML []byte
