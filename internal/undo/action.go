package undo

import "fmt"

type Kind string

const (
	KindAddedCategory     Kind = "added_category"
	KindDeletedCategory   Kind = "deleted_category"
	KindRenamedCategory   Kind = "renamed_category"
	KindAddedItem         Kind = "added_item"
	KindDeletedItem       Kind = "deleted_item"
	KindRenamedItem       Kind = "renamed_item"
	KindCompletionToggled Kind = "completion_toggled"
)

// Action is the inverse-able record of one successful mutation. The set of
// implementations is closed to this package.
type Action interface {
	Kind() Kind
	Describe() string
	action()
}

type AddedCategory struct {
	Name string
	ID   string
}

type DeletedCategory struct {
	Name string
	ID   string
}

type RenamedCategory struct {
	Old string
	New string
	ID  string
}

type AddedItem struct {
	Name       string
	CategoryID string
	ID         string
}

// DeletedItem keeps the completion flag so reinsertion restores the row as it was.
type DeletedItem struct {
	Name       string
	CategoryID string
	ID         string
	Completed  bool
}

type RenamedItem struct {
	Old        string
	New        string
	CategoryID string
	ID         string
}

// CompletionToggled stores the value the flag held before the toggle.
type CompletionToggled struct {
	Name       string
	CategoryID string
	ID         string
	Previous   bool
}

func (AddedCategory) Kind() Kind     { return KindAddedCategory }
func (DeletedCategory) Kind() Kind   { return KindDeletedCategory }
func (RenamedCategory) Kind() Kind   { return KindRenamedCategory }
func (AddedItem) Kind() Kind         { return KindAddedItem }
func (DeletedItem) Kind() Kind       { return KindDeletedItem }
func (RenamedItem) Kind() Kind       { return KindRenamedItem }
func (CompletionToggled) Kind() Kind { return KindCompletionToggled }

func (a AddedCategory) Describe() string   { return fmt.Sprintf("add category %q", a.Name) }
func (a DeletedCategory) Describe() string { return fmt.Sprintf("delete category %q", a.Name) }
func (a RenamedCategory) Describe() string {
	return fmt.Sprintf("rename category %q to %q", a.Old, a.New)
}
func (a AddedItem) Describe() string   { return fmt.Sprintf("add item %q", a.Name) }
func (a DeletedItem) Describe() string { return fmt.Sprintf("delete item %q", a.Name) }
func (a RenamedItem) Describe() string {
	return fmt.Sprintf("rename item %q to %q", a.Old, a.New)
}
func (a CompletionToggled) Describe() string {
	if a.Previous {
		return fmt.Sprintf("reopen item %q", a.Name)
	}
	return fmt.Sprintf("complete item %q", a.Name)
}

func (AddedCategory) action()     {}
func (DeletedCategory) action()   {}
func (RenamedCategory) action()   {}
func (AddedItem) action()         {}
func (DeletedItem) action()       {}
func (RenamedItem) action()       {}
func (CompletionToggled) action() {}
