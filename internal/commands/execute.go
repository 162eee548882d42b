package commands

import "fmt"

type Handler func(Command) (Result, error)

type Result struct {
	Message string
}

type Handlers struct {
	AddCategory        Handler
	DeleteCategory     Handler
	EditCategory       Handler
	EnterCategory      Handler
	AddItem            Handler
	DeleteItem         Handler
	EditItem           Handler
	CompleteItem       Handler
	ReturnToCategories Handler
	UndoLastAction     Handler
}

func (h Handlers) lookup(intent Intent) (Handler, bool) {
	switch intent {
	case IntentAddCategory:
		return h.AddCategory, true
	case IntentDeleteCategory:
		return h.DeleteCategory, true
	case IntentEditCategory:
		return h.EditCategory, true
	case IntentEnterCategory:
		return h.EnterCategory, true
	case IntentAddItem:
		return h.AddItem, true
	case IntentDeleteItem:
		return h.DeleteItem, true
	case IntentEditItem:
		return h.EditItem, true
	case IntentCompleteItem:
		return h.CompleteItem, true
	case IntentReturnToCategories:
		return h.ReturnToCategories, true
	case IntentUndoLastAction:
		return h.UndoLastAction, true
	default:
		return nil, false
	}
}

// Route sends cmd to the handler registered for its intent. Commands missing
// a required target are reported as unrecognised without reaching a handler.
func Route(cmd Command, handlers Handlers) (Result, error) {
	handler, known := handlers.lookup(cmd.Intent)
	if !known || !cmd.HasTargets() {
		return Result{}, Unrecognized(cmd.Raw)
	}
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", cmd.Intent)}
	}
	return handler(cmd)
}
