// Package schema loads form schema documents from files, fs.FS trees, or URLs
// and converts them between JSON, YAML, and model.FormSchema.
package schema
