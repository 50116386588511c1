package assets

import _ "embed"

// Categories is the built-in food category catalog, grouped by cuisine.
//
//go:embed categories.json
var Categories []byte
