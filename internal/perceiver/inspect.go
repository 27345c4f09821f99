package perceiver

import "github.com/born-ml/perceiver/internal/nn"

// LayerInfo describes one sublayer position of a model.
type LayerInfo struct {
	Depth    int  // layer group index
	Block    int  // self block index, -1 for the cross-attention roles
	Role     Role // sublayer role
	Instance int  // distinct instance number, in first-appearance order
	Shared   bool // the instance appears at more than one position
	Params   int  // scalar parameters of the instance
}

// Describe lists every sublayer position in forward order. Positions that
// share a tied instance report the same Instance number.
func (m *Model[B]) Describe() []LayerInfo {
	var infos []LayerInfo
	ids := make(map[nn.Parameterized[B]]int)
	uses := make(map[int]int)

	record := func(depth, block int, role Role, layer nn.Parameterized[B]) {
		id, ok := ids[layer]
		if !ok {
			id = len(ids)
			ids[layer] = id
		}
		uses[id]++
		infos = append(infos, LayerInfo{
			Depth:    depth,
			Block:    block,
			Role:     role,
			Instance: id,
			Params:   nn.CountParameters(layer.Parameters()),
		})
	}

	for i, group := range m.layers {
		record(i, -1, RoleCrossAttn, group.Cross)
		record(i, -1, RoleCrossFF, group.CrossFF)
		for j, block := range group.SelfBlocks {
			record(i, j, RoleLatentAttn, block.Attn)
			record(i, j, RoleLatentFF, block.FF)
		}
	}

	for k := range infos {
		infos[k].Shared = uses[infos[k].Instance] > 1
	}
	return infos
}
