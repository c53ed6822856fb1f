// Package yolo implements the Darknet YOLO detection format.
//
// Layout, relative to the store root:
//
//	obj.names                       one label name per line
//	obj.data                        classes count and subset lists
//	<subset>.txt                    image paths of the subset
//	obj_<subset>_data/<id>.txt      one "label cx cy w h" line per box
//	obj_<subset>_data/images.meta   "<id> <width> <height>" per item
//	obj_<subset>_data/<id><ext>     images, when media is saved
//
// Box coordinates are normalised by the image size, so every exported
// item must have a known size. Only labelled bounding boxes are
// represented; other annotations are skipped on export.
//
// Importing the package registers the format under the name "yolo".
package yolo
