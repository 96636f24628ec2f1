package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/roach88/tmotif/internal/graph"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainFingerprint = "tmotif/match/v1"
	DomainMatchID     = "tmotif/match-id/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// lengthPrefixed concatenates parts, each preceded by its uvarint length.
func lengthPrefixed(parts ...string) []byte {
	var buf []byte
	for _, p := range parts {
		buf = binary.AppendUvarint(buf, uint64(len(p)))
		buf = append(buf, p...)
	}
	return buf
}

// Fingerprint identifies a match by its ordered edge names. Edge names are
// unique within a graph, so within one run two matches share a fingerprint
// only if they are the same embedding.
func Fingerprint(g *graph.EventGraph) string {
	names := make([]string, g.NumEdges())
	for i := range names {
		names[i] = g.Edge(i).Name
	}
	return hashWithDomain(DomainFingerprint, lengthPrefixed(names...))
}

// matchID derives the primary key of a match from its run and fingerprint.
func matchID(runID, fingerprint string) string {
	return hashWithDomain(DomainMatchID, lengthPrefixed(runID, fingerprint))
}
