// Package resource bounds the work shared by the merger, format plugins
// and the media cache.
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 50 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
//	w := rc.Writer(ctx, file) // throttled
//
// All methods are safe on a nil *Controller and then impose no limits.
package resource
