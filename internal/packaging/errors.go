package packaging

import "errors"

// ErrPackageBuild reports that a file's package could not be completed.
// It wraps the originating encoder error.
var ErrPackageBuild = errors.New("package build failed")
