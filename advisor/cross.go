package advisor

// crossProduct merges every compatible pair (a, b) from the two
// configurations into a wider index, interned through the pool.
func (a *advisor) crossProduct(config, singleColumns *IndexConfiguration) *IndexConfiguration {
	result := NewIndexConfiguration()
	for _, idx := range config.List() {
		for _, col := range singleColumns.List() {
			if idx == col || !idx.Compatible(col, a.knobs.MaxIndexCols) {
				continue
			}
			result.Add(a.pool.Put(idx.Merge(col)))
		}
	}
	return result
}
