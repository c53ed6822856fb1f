// Package hash provides stable hashes for dataset splits and the
// CRC32-Castagnoli checksums used for blob upload integrity.
//
// Split assignments must not change between runs or Go versions, so item
// keys are hashed with Key (xxHash64) instead of a seeded map hash:
//
//	sum := hash.Key(seed, item.Subset, item.ID)
//
// Uploads to S3 carry a base64 CRC32C of the payload computed with CRC32C.
package hash
