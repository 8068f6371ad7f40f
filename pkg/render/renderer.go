package render

import (
	"context"
)

// Renderer converts a render Plan into a byte representation (HTML, terminal
// output, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, plan Plan, options RenderOptions) ([]byte, error)
}
