// Package cache provides a generic size-bounded LRU cache.
//
// It backs the block cache of blobstore.CachingStore and the decoded image
// cache of the media package. Both charge cached bytes to an optional
// resource.Controller so one memory budget covers every cache in a
// process.
package cache
