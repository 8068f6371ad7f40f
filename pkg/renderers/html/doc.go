// Package html renders form plans as HTML using embedded pongo2 templates.
//
// Public renders contain only the fields visible for the current values.
// Preview renders keep hidden fields in place, marked with data-hidden and a
// dimmed class, so authors can see what their conditions do. Descriptions are
// sanitised with a bluemonday UGC policy; every other schema string is escaped.
package html
