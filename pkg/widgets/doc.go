// Package widgets maps field definitions to the widget a renderer draws.
package widgets
