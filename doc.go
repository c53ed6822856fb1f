// Package annoset provides an engine for annotated computer-vision datasets.
//
// A dataset is an ordered collection of items (images, video frames, point
// clouds) carrying typed annotations: labels, boxes, polygons, polylines,
// masks, keypoints, 3D cuboids and captions. Annoset reads and writes
// datasets in interchangeable formats, filters them with an XPath-style
// query language, reshapes them with composable transforms and merges
// annotations from several sources into one consensus dataset.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, _ := annoset.New()
//	ds, warnings, _ := s.Import(ctx, annoset.AutoFormat, blobstore.NewLocalStore("./in"), format.Options{})
//	_ = s.Export(ctx, ds, "yolo", blobstore.NewLocalStore("./out"), format.Options{SaveMedia: true})
//
// # Filtering
//
// Queries select items, annotations or both:
//
//	view, _ := s.Filter(ds, "/item/annotation[label='car' and w * h > 100]", transform.ModeAnnotations)
//
// Views are lazy; they are evaluated when iterated or materialized.
//
// # Merging
//
// Merge matches annotations of the same item across sources by geometric
// similarity and resolves disagreements with a policy:
//
//	merged, report, _ := s.Merge(ctx, []dataset.Source{a, b, c},
//	    merge.WithPolicy(merge.Intersect),
//	    merge.WithThreshold(0.5),
//	)
//	for _, c := range report.Conflicts {
//	    fmt.Println(c)
//	}
//
// # Packages
//
//   - dataset: items, datasets, lazy views and comparison
//   - annotation, attr, category, media: the data model
//   - geometry: IoU, OKS and similarity per annotation kind
//   - query: the query language
//   - transform: filters, label remapping, splits and pipelines
//   - merge: the matcher and merger
//   - format, format/native, format/yolo: import and export plugins
//   - blobstore: local, in-memory, S3 and MinIO storage
//   - resource: worker, IO and memory limits
//   - promcollector: Prometheus metrics
package annoset
