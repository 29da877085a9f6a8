package tag

import "fmt"

// Tag is a named label stored in the tags table.
// ID is assigned by the store and never reused after deletion.
type Tag struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Rename returns a copy of t carrying newName. The receiver is not modified.
func (t Tag) Rename(newName string) Tag {
	return Tag{ID: t.ID, Name: newName}
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return fmt.Sprintf("%s#%d", t.Name, t.ID)
}

// Count pairs a tag with the number of assignment rows referencing it.
// Duplicate assignments of the same object are counted individually.
type Count struct {
	Tag  Tag   `json:"tag"`
	Uses int64 `json:"uses"`
}

// Taggable is any caller-owned entity that can carry tags.
// The store only ever reads the id; it never inspects the entity itself.
type Taggable interface {
	TaggableID() int64
}

// ObjectID is a bare object id usable wherever a Taggable is expected.
type ObjectID int64

// TaggableID implements Taggable.
func (id ObjectID) TaggableID() int64 { return int64(id) }
