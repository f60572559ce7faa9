package nsstore

import (
	"strings"
)

// Separator joins key, version and namespace in an encoded key.
const Separator = "::"

// EncodeKey returns the backend key for key in the given version and namespace:
//
//	<key>::<version>::<namespace>
func EncodeKey(key, version, namespace string) string {
	return key + Separator + version + Separator + namespace
}

// validComponent reports whether s can be used as namespace or version.
// Components must not contain ':' so that the last two segments of an
// encoded key can be split off without ambiguity.
func validComponent(s string) bool {
	return s != "" && !strings.Contains(s, ":")
}

// inNamespace reports whether encoded was written to the namespace whose
// suffix ("::<namespace>") is nsSuffix, regardless of the version.
// A non-empty version segment has to precede the namespace.
func inNamespace(encoded, nsSuffix string) bool {
	rest, ok := strings.CutSuffix(encoded, nsSuffix)
	if !ok {
		return false
	}
	i := strings.LastIndex(rest, Separator)
	return i >= 0 && i+len(Separator) < len(rest)
}

// decodeKey strips the "::<version>::<namespace>" suffix from encoded.
// The boolean is false if encoded does not carry the suffix.
func decodeKey(encoded, suffix string) (string, bool) {
	return strings.CutSuffix(encoded, suffix)
}
