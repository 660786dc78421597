//go:build tools
// +build tools

// Package tools tracks code generators invoked through go:generate, so
// mockgen resolves from go.mod on a fresh checkout.
package roomchat

import (
	_ "go.uber.org/mock/mockgen"
)
