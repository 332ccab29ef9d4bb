// Package samples builds the two demonstration composites: a sequential
// data processing pipeline (extract, validate, format) and a parallel
// aggregator fanning out to weather, news and stock feeds.
//
// Agents dispatch tools by name. Tool arguments are bound from the user
// query with small deterministic parsers instead of model inference.
package samples
