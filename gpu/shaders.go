package gpu

import _ "embed"

// adjustShaderSource is the WGSL compute kernel for one pipeline pass.
//
//go:embed shaders/adjust.wgsl
var adjustShaderSource string
