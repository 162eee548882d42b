package executor

import "fmt"

type ViewKind int

const (
	CategoriesView ViewKind = iota
	ItemsView
)

func (k ViewKind) String() string {
	if k == ItemsView {
		return "items"
	}
	return "categories"
}

// View is the screen the session is on. CategoryID and CategoryName are set
// only for ItemsView.
type View struct {
	Kind         ViewKind
	CategoryID   string
	CategoryName string
}

func (v View) String() string {
	if v.Kind == ItemsView {
		return fmt.Sprintf("items(%s)", v.CategoryName)
	}
	return v.Kind.String()
}

type ItemRef struct {
	ID        string
	Completed bool
}

type CategoryEntry struct {
	Name string
	ID   string
}

type ItemEntry struct {
	Name      string
	ID        string
	Completed bool
}

// Session is the executor's in-memory mirror of the store: every category by
// name and the items of the open category by name. After every successful
// executor call it agrees with the store.
type Session struct {
	view       View
	categories index[string]
	items      index[ItemRef]
}

func newSession() Session {
	return Session{
		categories: newIndex[string](),
		items:      newIndex[ItemRef](),
	}
}

func (s *Session) openCategories() {
	s.view = View{Kind: CategoriesView}
	s.items = newIndex[ItemRef]()
}

func (s *Session) viewing(categoryID string) bool {
	return s.view.Kind == ItemsView && s.view.CategoryID == categoryID
}

// index is a name-keyed map that remembers insertion order for display.
type index[V any] struct {
	order  []string
	byName map[string]V
}

func newIndex[V any]() index[V] {
	return index[V]{byName: make(map[string]V)}
}

func (x *index[V]) get(name string) (V, bool) {
	v, ok := x.byName[name]
	return v, ok
}

func (x *index[V]) has(name string) bool {
	_, ok := x.byName[name]
	return ok
}

func (x *index[V]) set(name string, v V) {
	if _, ok := x.byName[name]; !ok {
		x.order = append(x.order, name)
	}
	x.byName[name] = v
}

func (x *index[V]) remove(name string) {
	if _, ok := x.byName[name]; !ok {
		return
	}
	delete(x.byName, name)
	for i, n := range x.order {
		if n == name {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
}

func (x *index[V]) rename(from, to string) {
	v, ok := x.byName[from]
	if !ok {
		return
	}
	delete(x.byName, from)
	x.byName[to] = v
	for i, n := range x.order {
		if n == from {
			x.order[i] = to
			break
		}
	}
}

// find returns the first name whose value satisfies match.
func (x *index[V]) find(match func(V) bool) (string, bool) {
	for _, n := range x.order {
		if match(x.byName[n]) {
			return n, true
		}
	}
	return "", false
}

func (x *index[V]) names() []string {
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

func (x *index[V]) len() int {
	return len(x.order)
}
