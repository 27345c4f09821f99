package tensor

// Reshape returns a tensor with the same data and a new shape.
// One dimension may be -1 and is inferred from the others.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{12}, backend)
//	r := t.Reshape(3, -1) // Shape: [3, 4]
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes dimensions. Without axes it reverses them.
//
// Example:
//
//	t := tensor.Randn(Shape{2, 3, 4}, backend)
//	p := t.Transpose(0, 2, 1) // Shape: [2, 4, 3]
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// Expand broadcasts the tensor to shape, materialising the repeats.
func (t *Tensor[T, B]) Expand(shape Shape) *Tensor[T, B] {
	return New[T, B](t.backend.Expand(t.raw, shape), t.backend)
}

// Unsqueeze inserts a dimension of size 1 at dim.
// Supports negative dim indexing.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Squeeze removes the size-1 dimension at dim.
// Panics if the dimension size is not 1.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}

// Chunk splits the tensor into n equal parts along dim.
// The dimension size must be divisible by n.
//
// Example:
//
//	x := tensor.Randn(Shape{2, 3, 6}, backend)
//	parts := x.Chunk(2, -1) // 2 tensors of shape [2, 3, 3]
func (t *Tensor[T, B]) Chunk(n, dim int) []*Tensor[T, B] {
	raws := t.backend.Chunk(t.raw, n, dim)
	parts := make([]*Tensor[T, B], len(raws))
	for i, raw := range raws {
		parts[i] = New[T, B](raw, t.backend)
	}
	return parts
}

// Cat concatenates tensors along dim. All shapes must match except at dim.
//
// Example:
//
//	a := tensor.Randn(Shape{2, 3}, backend)
//	b := tensor.Randn(Shape{2, 5}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // Shape: [2, 8]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	backend := tensors[0].backend
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T, B](backend.Cat(raws, dim), backend)
}

// Where selects from x where cond is true and from y elsewhere.
// cond, x and y broadcast against each other.
//
// Example:
//
//	keep := tensor.MustFromSlice([]bool{true, false}, Shape{2}, backend)
//	out := tensor.Where(keep, x, fill)
func Where[T DType, B Backend](cond *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](x.backend.Where(cond.raw, x.raw, y.raw), x.backend)
}
