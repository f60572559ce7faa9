// Package nsstore implements store.IStore on top of any db.KVDB that is shared
// between several independent consumers.
//
// Every item is stored as JSON text under the backend key
//
//	<key>::<version>::<namespace>
//
// which gives three properties:
//   - Namespacing: stores with different namespaces never see each other's items.
//   - Versioning: bumping the version makes all items written by older versions
//     invisible, without migrating them.
//   - Selective clearing: Clear removes every item of the namespace, whatever
//     version wrote it, and leaves other namespaces alone.
//
// Namespace and version must not contain ':'. That keeps the last two
// segments of an encoded key unambiguous, so a namespace that is a suffix of
// another one ("app" and "myapp") or one that contains the separator cannot be
// confused. Keys themselves may contain anything.
//
// Clear enumerates the backend by position and collects matching keys before
// removing any of them. Neither Clear nor any other operation is atomic with
// respect to other writers of the same backend.
//
// Usage Example:
//
//	database := memory.NewMemoryDB()
//	settings, err := nsstore.NewNamespacedStore(database, "settings", "v2")
//	if err != nil {
//		return err
//	}
//
//	_ = settings.SetItem("theme", map[string]string{"mode": "dark"})
//	theme, found, err := store.Get[map[string]string](settings, "theme")
//
//	// logout: drop everything the settings namespace ever stored
//	_ = settings.Clear()
package nsstore
