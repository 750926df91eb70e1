package badger

import (
	"fmt"
	"strings"
)

const keySeparator = "/"

// validateName rejects database and collection names that would make
// document keys ambiguous.
func validateName(kind, name string) error {
	if name == "" || strings.Contains(name, keySeparator) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// makeCollectionPrefix generates the prefix shared by every document key of
// a collection.
// Format: database/collection/
func makeCollectionPrefix(database, collection string) []byte {
	return []byte(database + keySeparator + collection + keySeparator)
}

// makeDocumentKey generates a key for a document by ID.
// Format: database/collection/id
func makeDocumentKey(database, collection, id string) []byte {
	prefix := makeCollectionPrefix(database, collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}
