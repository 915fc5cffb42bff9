package cache

import "strings"

// ScopedKeyer namespaces another Keyer, so the CLI and the API server can
// share one Redis without serving each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api")
//	keyer.LayoutKey(h, opts) // "api:layout:…"
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer prefixes every key of inner (the default keyer when nil)
// with scope. A ':' separator is added unless scope already ends in one.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope != "" && !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return ScopedKeyer{inner: inner, scope: scope}
}

func (k ScopedKeyer) GenerateKey(prompt string, opts GenerateKeyOpts) string {
	return k.scope + k.inner.GenerateKey(prompt, opts)
}

func (k ScopedKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return k.scope + k.inner.LayoutKey(diagramHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope + k.inner.ArtifactKey(layoutHash, opts)
}
