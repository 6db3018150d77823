// pkg/loader/reference.go
package loader

import (
	"context"

	"github.com/David-Botos/saferoads/pkg/reference"
)

// LoadReference replaces the vehicle type reference table
func (l *Loader) LoadReference(ctx context.Context) (*LoadResult, error) {
	return l.Load(ctx, reference.Table(), ModeReplace)
}
