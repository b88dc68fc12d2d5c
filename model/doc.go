// Package model defines the intermediate document representation shared by
// the whole conversion pipeline.
//
// The [Document] type is the format-agnostic structured form that every
// exporter consumes: an ordered sequence of pages, each holding an ordered
// sequence of [Block] values (paragraphs, headings, tables, images) with the
// style hints exporters need.
//
// The loader-facing types [PageContent], [TextFragment] and [Raster] carry
// raw page material into classification and reconstruction. [Advisory]
// records non-fatal conditions against a conversion.
package model
