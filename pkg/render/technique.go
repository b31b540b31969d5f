package render

import (
	"fmt"

	"glscene/pkg/asset"
	"glscene/pkg/gpu"
)

// TechniqueKind names a shader pipeline.
type TechniqueKind int

const (
	TechniqueBlinnPhong TechniqueKind = iota
	TechniqueUnlitColor
	TechniqueGrid
	numTechniques
)

func (k TechniqueKind) String() string {
	switch k {
	case TechniqueBlinnPhong:
		return "blinnphong"
	case TechniqueUnlitColor:
		return "unlitcolor"
	case TechniqueGrid:
		return "grid"
	default:
		return fmt.Sprintf("technique(%d)", int(k))
	}
}

// techniqueFor maps a material type to the pipeline that shades it.
func techniqueFor(t asset.MaterialType) TechniqueKind {
	if t == asset.UnlitColor {
		return TechniqueUnlitColor
	}
	return TechniqueBlinnPhong
}

var meshAttribs = []gpu.VertexAttrib{
	{Location: asset.LocationPosition, Components: 3},
	{Location: asset.LocationNormal, Components: 3},
	{Location: asset.LocationTexcoord, Components: 2},
	{Location: asset.LocationColor, Components: 4},
}

type techniqueLayout struct {
	vert, frag string
	attribs    []gpu.VertexAttrib
}

var techniqueLayouts = [numTechniques]techniqueLayout{
	TechniqueBlinnPhong: {vert: ShaderCommonVert, frag: ShaderBlinnPhongFrag, attribs: meshAttribs},
	TechniqueUnlitColor: {vert: ShaderUnlitVert, frag: ShaderUnlitFrag, attribs: []gpu.VertexAttrib{
		{Location: asset.LocationPosition, Components: 3},
		{Location: asset.LocationColor, Components: 4},
	}},
	TechniqueGrid: {vert: ShaderGridVert, frag: ShaderGridFrag},
}

// Technique is a compiled pipeline for one TechniqueKind.
type Technique struct {
	Kind     TechniqueKind
	pipeline gpu.Pipeline
	// hash of the sources the pipeline was built from
	hash uint64
}

// Bind makes the pipeline current.
func (t *Technique) Bind() {
	t.pipeline.Bind()
}

func (t *Technique) release() {
	if t.pipeline != nil {
		t.pipeline.Release()
		t.pipeline = nil
	}
}
