package internal

import (
	"encoding/binary"
	"math"

	"graphics.gd/classdb/Image"
	"graphics.gd/classdb/ImageTexture"

	"the.quetzal.community/petrel/shallows"
)

// depthTexture mirrors the CPU depth field into a two-channel float GPU
// texture: red is normalized terrain height, green is the continent mask.
// The water shader samples it to damp waves and draw shoreline foam.
type depthTexture struct {
	field    *shallows.Field
	texture  ImageTexture.Instance
	data     []byte
	revision uint64
}

func newDepthTexture(field *shallows.Field) *depthTexture {
	return &depthTexture{field: field}
}

// refresh re-uploads the texture when the field has re-rendered. It
// reports whether anything changed so the caller can update the shader
// parameters that locate the texture in the world.
func (dt *depthTexture) refresh() bool {
	if dt.revision == dt.field.Revision() {
		return false
	}
	dt.revision = dt.field.Revision()

	pixels := dt.field.Pixels()
	if dt.data == nil {
		dt.data = make([]byte, len(pixels)*4)
	}
	for i, v := range pixels {
		binary.LittleEndian.PutUint32(dt.data[i*4:], math.Float32bits(v))
	}
	resolution := dt.field.Resolution()
	image := Image.CreateFromData(resolution, resolution, false, Image.FormatRgf, dt.data)
	if dt.texture == ImageTexture.Nil {
		dt.texture = ImageTexture.CreateFromImage(image)
	} else {
		dt.texture.Update(image)
	}
	return true
}
