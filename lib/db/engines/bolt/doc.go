// Package bolt implements db.KVDB on top of bbolt, an embedded B+ tree
// database stored in a single file. All entries live in one bucket and keys
// are enumerated in byte order from a key list that is read in one
// transaction and cached until a key is added or removed.
//
// Usage Example:
//
//	database, err := bolt.Open("nskv.db", nil)
//	if err != nil {
//		return err
//	}
//	defer database.Close()
package bolt
