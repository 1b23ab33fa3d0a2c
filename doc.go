/*
Package seqdb implements ordered, auto-incrementing record collections on top
of an embedded key-value store (Bolt).

A Registry pools physical stores by name; each store holds any number of
collections. Records are schemaless documents (Record) identified by
positive integers allocated in increasing order.

# Technical Details

**Buckets.**
Each collection is a top-level Bolt bucket, so collections never see each
other's keys even when identifiers coincide.

**Counter.**
Every bucket holds one reserved entry, "\xffcounter", whose value is the
encoded largest allocated identifier (0 when empty). It is read once when the
collection is first opened and cached. Inserts write the counter after the
data batch commits; deletes that remove the largest record recompute it in the
same transaction. At open, a counter that disagrees with the largest live key
is reconciled and a warning is logged.

## Binary encoding

**Key encoding.**
A length byte L (0..8) followed by L big-endian bytes of the identifier
without leading zeros. Lexicographic order of keys equals numeric order of
identifiers. Reserved keys start with a byte >= 9 and sort after all records.

**Value**: flags (uvarint), xxhash64 of data (8 bytes, big endian), data.

**Value data**: msgpack (or JSON, per flags) of the record without its
identifier.
*/
package seqdb
