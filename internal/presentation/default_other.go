// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package presentation

import "github.com/pdiddy/convert-master/internal/office"

const composition = false

// Default returns the platform presenter factory. Without PowerPoint
// automation decks are exported by the office suite.
func Default(rt office.Runtime) Factory {
	return OfficeFactory(rt)
}
