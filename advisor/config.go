package advisor

import (
	"strings"

	"github.com/dbrainlab/autoindex/utils"
)

const configKeySeparator = ";"

// IndexConfiguration is an unordered set of pooled index references evaluated
// as a unit. Equality is set equality; two set-equal configurations always
// produce byte-identical Key() strings.
type IndexConfiguration struct {
	indexes utils.Set[*IndexObject]
}

// NewIndexConfiguration creates a configuration over the given indexes.
func NewIndexConfiguration(indexes ...*IndexObject) *IndexConfiguration {
	c := &IndexConfiguration{indexes: utils.NewSet[*IndexObject]()}
	c.indexes.AddList(indexes...)
	return c
}

// Add inserts an index.
func (c *IndexConfiguration) Add(idx *IndexObject) {
	c.indexes.Add(idx)
}

// Remove deletes an index.
func (c *IndexConfiguration) Remove(idx *IndexObject) {
	c.indexes.Remove(idx)
}

// Contains reports membership by value.
func (c *IndexConfiguration) Contains(idx *IndexObject) bool {
	return c.indexes.Contains(idx)
}

// Merge adds every member of other.
func (c *IndexConfiguration) Merge(other *IndexConfiguration) {
	c.indexes.AddSet(other.indexes)
}

// Difference returns the members of c that are not in other.
func (c *IndexConfiguration) Difference(other *IndexConfiguration) *IndexConfiguration {
	return &IndexConfiguration{indexes: utils.DiffSet(c.indexes, other.indexes)}
}

// Count returns the number of indexes.
func (c *IndexConfiguration) Count() int {
	return c.indexes.Size()
}

// List returns the members sorted by canonical key.
func (c *IndexConfiguration) List() []*IndexObject {
	return c.indexes.ToList()
}

// Key returns the stable string form of the configuration: the members'
// canonical keys, sorted and joined. It is the memo key and the hash form —
// never hash a configuration by its member pointers.
func (c *IndexConfiguration) Key() string {
	return strings.Join(c.indexes.ToKeyList(), configKeySeparator)
}

// Clone returns a shallow copy sharing the pooled references.
func (c *IndexConfiguration) Clone() *IndexConfiguration {
	return &IndexConfiguration{indexes: c.indexes.Clone()}
}

// Subsets returns every subset with exactly n members.
func (c *IndexConfiguration) Subsets(n int) []*IndexConfiguration {
	var res []*IndexConfiguration
	for _, s := range utils.Combinations(c.indexes, n) {
		res = append(res, &IndexConfiguration{indexes: s})
	}
	return res
}

func (c *IndexConfiguration) String() string {
	var parts []string
	for _, idx := range c.List() {
		parts = append(parts, idx.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
