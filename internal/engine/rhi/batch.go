package rhi

import "image"

// OpKind is the kind of a resource update.
type OpKind int

const (
	OpUpdateDynamicBuffer OpKind = iota
	OpUploadStaticBuffer
	OpUploadTexture
)

func (k OpKind) String() string {
	switch k {
	case OpUpdateDynamicBuffer:
		return "update-dynamic"
	case OpUploadStaticBuffer:
		return "upload-static"
	case OpUploadTexture:
		return "upload-texture"
	default:
		return "unknown"
	}
}

// Op is one queued resource update.
type Op struct {
	Kind    OpKind
	Buffer  Buffer
	Offset  int
	Data    []byte
	Texture Texture
	Image   *image.RGBA
}

// UpdateBatch queues resource updates to be applied by a command buffer.
// Queued data must not be modified until the batch has been submitted.
type UpdateBatch struct {
	ops []Op
}

// NewUpdateBatch returns an empty batch.
func NewUpdateBatch() *UpdateBatch {
	return &UpdateBatch{}
}

// UpdateDynamicBuffer writes data at offset into a buffer updated every frame.
func (b *UpdateBatch) UpdateDynamicBuffer(buf Buffer, offset int, data []byte) {
	b.ops = append(b.ops, Op{Kind: OpUpdateDynamicBuffer, Buffer: buf, Offset: offset, Data: data})
}

// UploadStaticBuffer writes data at offset into a buffer written once.
func (b *UpdateBatch) UploadStaticBuffer(buf Buffer, offset int, data []byte) {
	b.ops = append(b.ops, Op{Kind: OpUploadStaticBuffer, Buffer: buf, Offset: offset, Data: data})
}

// UploadTexture replaces the contents of tex with img.
func (b *UpdateBatch) UploadTexture(tex Texture, img *image.RGBA) {
	b.ops = append(b.ops, Op{Kind: OpUploadTexture, Texture: tex, Image: img})
}

// Merge appends the ops of other and empties it.
func (b *UpdateBatch) Merge(other *UpdateBatch) {
	if other == nil || other == b {
		return
	}
	b.ops = append(b.ops, other.ops...)
	other.ops = nil
}

// Ops returns the queued updates in submission order.
func (b *UpdateBatch) Ops() []Op {
	if b == nil {
		return nil
	}
	return b.ops
}

// Len returns the number of queued updates.
func (b *UpdateBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// Reset drops all queued updates.
func (b *UpdateBatch) Reset() {
	b.ops = b.ops[:0]
}
