// Package build renders every page of a documentation tree.
//
// Builder discovers the markdown sources of the input directory, renders
// them on a bounded worker pool through the page assembler and writes one
// HTML page plus a standalone table of contents per source. A failing page
// is logged and counted; the others still render. Builds are incremental
// when a state store is attached: a page whose source and site settings are
// unchanged since its last successful render is skipped.
package build
