package fmi

import (
	"crypto/sha1"
	"fmt"
)

// namespaceURL is the RFC 4122 URL namespace UUID.
var namespaceURL = [16]byte{
	0x6b, 0xa7, 0xb8, 0x11, 0x9d, 0xad, 0x11, 0xd1,
	0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8,
}

// modelGUID returns the deterministic version-5 UUID for a component, derived
// from the package and part names so regenerating an unchanged architecture
// yields identical model descriptions.
func modelGUID(pkg, part string) string {
	name := fmt.Sprintf("ssp_airplane/%s/%s", pkg, part)
	h := sha1.New()
	h.Write(namespaceURL[:])
	h.Write([]byte(name))
	sum := h.Sum(nil)

	var uuid [16]byte
	copy(uuid[:], sum[:16])
	uuid[6] = (uuid[6] & 0x0f) | 0x50 // version 5
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // RFC 4122 variant
	return fmt.Sprintf("%x-%x-%x-%x-%x", uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}
