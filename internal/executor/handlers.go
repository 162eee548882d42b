package executor

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/undo"
)

func result(format string, args ...any) (commands.Result, error) {
	return commands.Result{Message: fmt.Sprintf(format, args...)}, nil
}

func (e *Executor) addCategory(ctx context.Context, name string) (commands.Result, error) {
	if e.session.categories.has(name) {
		return commands.Result{}, commands.Conflict("category", name)
	}
	id, err := e.repo.CreateCategory(ctx, name)
	if err != nil {
		return commands.Result{}, storeErr("create", "category", name, err)
	}
	e.session.categories.set(name, id)
	e.record(undo.AddedCategory{Name: name, ID: id})
	return result("added category %q", name)
}

func (e *Executor) deleteCategory(ctx context.Context, spoken string) (commands.Result, error) {
	name, id, err := e.lookupCategory(spoken, false)
	if err != nil {
		return commands.Result{}, err
	}
	if err := e.repo.DeleteCategory(ctx, id); err != nil {
		return commands.Result{}, storeErr("delete", "category", name, err)
	}
	e.session.categories.remove(name)
	if e.session.viewing(id) {
		e.session.openCategories()
	}
	e.record(undo.DeletedCategory{Name: name, ID: id})
	return result("deleted category %q", name)
}

func (e *Executor) renameCategory(ctx context.Context, spoken, newName string) (commands.Result, error) {
	oldName, id, err := e.lookupCategory(spoken, false)
	if err != nil {
		return commands.Result{}, err
	}
	if e.session.categories.has(newName) {
		return commands.Result{}, commands.Conflict("category", newName)
	}
	if err := e.repo.RenameCategory(ctx, id, newName); err != nil {
		return commands.Result{}, storeErr("rename", "category", newName, err)
	}
	e.session.categories.rename(oldName, newName)
	if e.session.viewing(id) {
		e.session.view.CategoryName = newName
	}
	e.record(undo.RenamedCategory{Old: oldName, New: newName, ID: id})
	return result("renamed category %q to %q", oldName, newName)
}

func (e *Executor) enterCategory(ctx context.Context, spoken string) (commands.Result, error) {
	name, id, err := e.lookupCategory(spoken, true)
	if err != nil {
		return commands.Result{}, err
	}
	items, err := e.repo.ListItems(ctx, id)
	if err != nil {
		return commands.Result{}, storeErr("list items of", "category", name, err)
	}
	e.session.view = View{Kind: ItemsView, CategoryID: id, CategoryName: name}
	e.session.items = newIndex[ItemRef]()
	for _, it := range items {
		e.session.items.set(it.Name, ItemRef{ID: it.ID, Completed: it.Completed})
	}
	return result("opened category %q", name)
}

func (e *Executor) returnToCategories() (commands.Result, error) {
	e.session.openCategories()
	return result("returned to categories")
}

func (e *Executor) addItem(ctx context.Context, name string) (commands.Result, error) {
	if e.session.items.has(name) {
		return commands.Result{}, commands.Conflict("item", name)
	}
	categoryID := e.session.view.CategoryID
	id, err := e.repo.CreateItem(ctx, categoryID, name)
	if err != nil {
		return commands.Result{}, storeErr("create", "item", name, err)
	}
	e.session.items.set(name, ItemRef{ID: id})
	e.record(undo.AddedItem{Name: name, CategoryID: categoryID, ID: id})
	return result("added item %q", name)
}

func (e *Executor) deleteItem(ctx context.Context, spoken string) (commands.Result, error) {
	name, ref, err := e.lookupItem(spoken)
	if err != nil {
		return commands.Result{}, err
	}
	if err := e.repo.DeleteItem(ctx, ref.ID); err != nil {
		return commands.Result{}, storeErr("delete", "item", name, err)
	}
	e.session.items.remove(name)
	e.record(undo.DeletedItem{
		Name:       name,
		CategoryID: e.session.view.CategoryID,
		ID:         ref.ID,
		Completed:  ref.Completed,
	})
	return result("deleted item %q", name)
}

func (e *Executor) renameItem(ctx context.Context, spoken, newName string) (commands.Result, error) {
	oldName, ref, err := e.lookupItem(spoken)
	if err != nil {
		return commands.Result{}, err
	}
	if e.session.items.has(newName) {
		return commands.Result{}, commands.Conflict("item", newName)
	}
	if err := e.repo.RenameItem(ctx, ref.ID, newName); err != nil {
		return commands.Result{}, storeErr("rename", "item", newName, err)
	}
	e.session.items.rename(oldName, newName)
	e.record(undo.RenamedItem{Old: oldName, New: newName, CategoryID: e.session.view.CategoryID, ID: ref.ID})
	return result("renamed item %q to %q", oldName, newName)
}

func (e *Executor) completeItem(ctx context.Context, spoken string) (commands.Result, error) {
	name, ref, err := e.lookupItem(spoken)
	if err != nil {
		return commands.Result{}, err
	}
	if err := e.setCompleted(ctx, name, ref, true); err != nil {
		return commands.Result{}, err
	}
	return result("marked item %q done", name)
}

func (e *Executor) toggleLocked(ctx context.Context, spoken string) (Effect, error) {
	if e.session.view.Kind != ItemsView {
		return Effect{}, commands.ScopeViolation(commands.IntentCompleteItem)
	}
	if spoken == "" {
		return Effect{}, commands.Unrecognized(spoken)
	}
	name, ref, err := e.lookupItem(spoken)
	if err != nil {
		return Effect{}, err
	}
	next := !ref.Completed
	if err := e.setCompleted(ctx, name, ref, next); err != nil {
		return Effect{}, err
	}
	msg := fmt.Sprintf("marked item %q done", name)
	if !next {
		msg = fmt.Sprintf("marked item %q not done", name)
	}
	return Effect{Intent: commands.IntentCompleteItem, Message: msg, View: e.session.view}, nil
}

func (e *Executor) setCompleted(ctx context.Context, name string, ref ItemRef, completed bool) error {
	if err := e.repo.SetCompleted(ctx, ref.ID, completed); err != nil {
		return storeErr("update", "item", name, err)
	}
	e.session.items.set(name, ItemRef{ID: ref.ID, Completed: completed})
	e.record(undo.CompletionToggled{
		Name:       name,
		CategoryID: e.session.view.CategoryID,
		ID:         ref.ID,
		Previous:   ref.Completed,
	})
	return nil
}

func (e *Executor) undoLast(ctx context.Context) (commands.Result, undo.Action, error) {
	a, held := e.slot.Peek()
	if !held {
		e.slot.Clear()
		e.metrics.RecordUndo(ctx, "unavailable")
		return commands.Result{}, nil, commands.UndoUnavailable()
	}
	if err := e.invert(ctx, a); err != nil {
		return commands.Result{}, nil, err
	}
	e.slot.Clear()
	e.metrics.RecordUndo(ctx, "applied")
	res, _ := result("undid %s", a.Describe())
	return res, a, nil
}

// invert applies the inverse of a to the store and then the cache. Item
// caches are only touched when the action's category is the open one.
func (e *Executor) invert(ctx context.Context, a undo.Action) error {
	switch act := a.(type) {
	case undo.AddedCategory:
		if err := e.repo.DeleteCategory(ctx, act.ID); err != nil {
			return storeErr("undo add of", "category", act.Name, err)
		}
		e.session.categories.remove(act.Name)
		if e.session.viewing(act.ID) {
			e.session.openCategories()
		}

	case undo.DeletedCategory:
		if e.session.categories.has(act.Name) {
			return commands.Conflict("category", act.Name)
		}
		if err := e.repo.ReinsertCategory(ctx, act.ID, act.Name); err != nil {
			return storeErr("undo delete of", "category", act.Name, err)
		}
		e.session.categories.set(act.Name, act.ID)

	case undo.RenamedCategory:
		if e.session.categories.has(act.Old) {
			return commands.Conflict("category", act.Old)
		}
		if err := e.repo.RenameCategory(ctx, act.ID, act.Old); err != nil {
			return storeErr("undo rename of", "category", act.New, err)
		}
		e.session.categories.rename(act.New, act.Old)
		if e.session.viewing(act.ID) {
			e.session.view.CategoryName = act.Old
		}

	case undo.AddedItem:
		if err := e.repo.DeleteItem(ctx, act.ID); err != nil {
			return storeErr("undo add of", "item", act.Name, err)
		}
		if e.session.viewing(act.CategoryID) {
			if name, found := e.session.items.find(func(r ItemRef) bool { return r.ID == act.ID }); found {
				e.session.items.remove(name)
			}
		}

	case undo.DeletedItem:
		if e.session.viewing(act.CategoryID) && e.session.items.has(act.Name) {
			return commands.Conflict("item", act.Name)
		}
		if err := e.repo.ReinsertItem(ctx, act.ID, act.CategoryID, act.Name, act.Completed); err != nil {
			return storeErr("undo delete of", "item", act.Name, err)
		}
		if e.session.viewing(act.CategoryID) {
			e.session.items.set(act.Name, ItemRef{ID: act.ID, Completed: act.Completed})
		}

	case undo.RenamedItem:
		if e.session.viewing(act.CategoryID) && e.session.items.has(act.Old) {
			return commands.Conflict("item", act.Old)
		}
		if err := e.repo.RenameItem(ctx, act.ID, act.Old); err != nil {
			return storeErr("undo rename of", "item", act.New, err)
		}
		if e.session.viewing(act.CategoryID) {
			e.session.items.rename(act.New, act.Old)
		}

	case undo.CompletionToggled:
		if err := e.repo.SetCompleted(ctx, act.ID, act.Previous); err != nil {
			return storeErr("undo completion of", "item", act.Name, err)
		}
		if e.session.viewing(act.CategoryID) {
			if name, found := e.session.items.find(func(r ItemRef) bool { return r.ID == act.ID }); found {
				e.session.items.set(name, ItemRef{ID: act.ID, Completed: act.Previous})
			}
		}

	default:
		return fmt.Errorf("undo: unsupported action %T", a)
	}
	return nil
}
