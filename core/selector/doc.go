// Package selector decides which file-bearing multipart parts a form is
// allowed to contain and how many times each field may occur.
//
// A Selector describes the accepted shape of the form; an Engine applies it
// to one parse session, tracking per-field occurrence counts. Selectors are
// immutable after construction and safe to share across sessions; each
// session gets its own Engine.
//
// # Selector Kinds
//
//	selector.Single("avatar")         // exactly one file under "avatar"
//	selector.Array("photos", 8)       // up to 8 files under "photos"
//	selector.Fields(                  // a fixed set of named fields
//		selector.Field{Name: "avatar", MaxCount: 1, MinCount: 1},
//		selector.Field{Name: "gallery", MaxCount: 12},
//	)
//	selector.None()                   // reject every file part
//	selector.Any()                    // accept any file field
//
// Exact-name rules always take priority; a field without a matching rule is
// handled by the engine's unknown-field policy: PolicyReject (the default)
// fails the session, PolicyIgnore drains and skips the part.
//
// # Usage
//
//	sel := selector.Array("photos", 8)
//	if err := sel.Validate(); err != nil {
//		return err
//	}
//
//	eng := selector.NewEngine(sel, selector.PolicyReject)
//	action, err := eng.EvaluateFile("photos")
//	if err != nil {
//		return err // unexpected field or count exceeded
//	}
//	if action == selector.ActionSkip {
//		// drain the part without storing it
//	}
package selector
