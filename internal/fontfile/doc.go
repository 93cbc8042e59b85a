// Package fontfile reads OpenType fonts at the table level and writes them
// back out as plain SFNT or WOFF 1.0.
//
// Table contents are never interpreted, only carried over. WOFF output keeps
// the source table data order unless SaveOptions.ReorderTables is set.
package fontfile
