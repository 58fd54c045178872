// Package catalog enumerates HTML stamps from the rendering service's
// paginated listing API. It is the only component whose errors are fatal to
// a run: without a catalog there is nothing to validate.
package catalog
