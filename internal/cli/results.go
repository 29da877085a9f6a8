package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/tagman/internal/store"
	"github.com/roach88/tagman/internal/tag"
)

// TagList is the result of commands listing tags.
type TagList struct {
	Tags []tag.Tag `json:"tags"`
}

func (l TagList) String() string {
	if len(l.Tags) == 0 {
		return "No tags."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range l.Tags {
		fmt.Fprintf(w, "%d\t%s\n", t.ID, t.Name)
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

// TagCountList is the result of "tag list --counts".
type TagCountList struct {
	Tags []tag.Count `json:"tags"`
}

func (l TagCountList) String() string {
	if len(l.Tags) == 0 {
		return "No tags."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUSES")
	for _, c := range l.Tags {
		fmt.Fprintf(w, "%d\t%s\t%d\n", c.Tag.ID, c.Tag.Name, c.Uses)
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

// TagResult reports a single tag mutation.
type TagResult struct {
	Action string  `json:"action"` // created, renamed, deleted
	Tag    tag.Tag `json:"tag"`
	From   string  `json:"from,omitempty"`
}

func (r TagResult) String() string {
	if r.From != "" {
		return fmt.Sprintf("%s tag %q -> %s", r.Action, r.From, r.Tag)
	}
	return fmt.Sprintf("%s tag %s", r.Action, r.Tag)
}

// ExistsResult is the result of "tag exists".
type ExistsResult struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

func (r ExistsResult) String() string {
	return strconv.FormatBool(r.Exists)
}

// AssignResult reports the outcome of assign and unassign.
type AssignResult struct {
	Tag        tag.Tag        `json:"tag"`
	TagCreated bool           `json:"tag_created,omitempty"`
	Changed    []tag.ObjectID `json:"changed"`
	Skipped    []tag.ObjectID `json:"skipped,omitempty"`
	verb       string
}

func (r AssignResult) String() string {
	var b strings.Builder
	if r.TagCreated {
		fmt.Fprintf(&b, "created tag %s\n", r.Tag)
	}
	fmt.Fprintf(&b, "%s %s: %d object(s)", r.verb, r.Tag, len(r.Changed))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d already tagged", len(r.Skipped))
	}
	return b.String()
}

// ObjectList is the result of search, untagged and tag show.
type ObjectList struct {
	Tag     *tag.Tag         `json:"tag,omitempty"`
	Columns []string         `json:"columns"`
	Objects []map[string]any `json:"objects"`
	rows    []store.Record
}

func newObjectList(columns []string, rows []store.Record) ObjectList {
	objects := make([]map[string]any, len(rows))
	for i, r := range rows {
		objects[i] = r.Map()
	}
	return ObjectList{Columns: columns, Objects: objects, rows: rows}
}

func (l ObjectList) String() string {
	var b strings.Builder
	if l.Tag != nil {
		fmt.Fprintf(&b, "tag %s\n", l.Tag)
	}
	if len(l.rows) == 0 {
		b.WriteString("No objects.")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(l.Columns, "\t"))
	for _, r := range l.rows {
		cells := make([]string, len(r.Values))
		for i, v := range r.Values {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// ExplainResult is the result of "search --explain".
type ExplainResult struct {
	Expression string `json:"expression"`
	SQL        string `json:"sql"`
	Params     []any  `json:"params"`
}

func (r ExplainResult) String() string {
	return fmt.Sprintf("%s\n-- params: %v", r.SQL, r.Params)
}
