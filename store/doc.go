// Package store implements the scoped data store used by the expression
// language.
//
// A [Context] wraps one root object and a stack of frames. Each frame holds a
// stack of scopes, and each scope pairs a data index with the object that
// index resolved to when the scope was pushed. Relative indices are looked up
// in the scopes of the current frame, innermost first; absolute indices (with
// a leading dot) are looked up from the root.
//
//	c := store.New(nil)
//	_ = c.Set("site", map[string]any{"title": "Home"})
//	_ = c.PushFrame("site")
//	v, _ := c.Get("title") // "Home"
//
// Stored values implementing [Resolver] are dynamic: they are resolved each
// time a lookup passes through them. [NewLazy], [NewAsync], [NewCounter],
// [NewThreadLocal], [NewLink] and [NewDynamic] build the common kinds.
//
// Expressions are evaluated through an [Evaluator], normally registered by
// the lang package when it is imported.
package store
