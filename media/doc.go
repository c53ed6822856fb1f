// Package media describes the media unit behind a dataset item.
//
// A Descriptor carries the media kind, its dimensions and where it lives.
// Pixel data is never decoded eagerly: a Descriptor may hold a Loader that
// resolves the image on demand, optionally through a shared Cache of
// decoded images. Dimensions can be read from a file header without
// decoding the whole image (FromFile, FromReader).
//
// Decoding and encoding use github.com/disintegration/imaging, so JPEG,
// PNG, GIF, TIFF and BMP are supported, plus WebP for decoding.
package media
