package sqlquery

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// DefaultMaxAliasLength is the longest alias emitted before the overflow is
// replaced by a content hash. It matches the identifier limit of common
// engines.
const DefaultMaxAliasLength = 63

// aliasHashDomain separates alias hashes from any other content hash.
const aliasHashDomain = "marin/alias/v1"

// aliasHashLength is the number of hex characters kept from the hash.
const aliasHashLength = 8

// generateAlias returns the deterministic alias of a join from lhsAlias over
// link. Aliases longer than max keep their prefix and end in a short hash of
// the full alias, so distinct long paths stay distinct.
func generateAlias(lhsAlias, link string, max int) string {
	alias := lhsAlias + "_" + link
	if max <= 0 || len(alias) <= max {
		return alias
	}
	keep := max - aliasHashLength - 1
	for keep > 0 && !utf8.RuneStart(alias[keep]) {
		keep--
	}
	if keep < 1 {
		return hashWithDomain(aliasHashDomain, alias)[:aliasHashLength]
	}
	return alias[:keep] + "_" + hashWithDomain(aliasHashDomain, alias)[:aliasHashLength]
}

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain, data string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
