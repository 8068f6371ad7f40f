// Package layout turns an ordered field list into rows for rendering.
package layout
