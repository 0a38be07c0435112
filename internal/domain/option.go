package domain

// Option is one labeled candidate the classifier can pick: an id plus the
// natural-language condition under which it applies. Options are classifier
// input only and are never persisted.
type Option struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
}

// Action is the business action an agent run resolves to.
type Action string

const (
	ActionInsert      Action = "INSERT"
	ActionSearch      Action = "SEARCH"
	ActionClearSearch Action = "CLEAR_SEARCH"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
)

// routable actions and the conditions the classifier matches them on.
var routerOptions = []Option{
	{ID: "insert", Condition: "the message is about insert or create a transaction"},
	{ID: "search", Condition: "the message is related to search transaction by some criteria"},
	{ID: "clear", Condition: "the message is about clearing search results and showing all transactions"},
}

// RouterOptions returns the fixed option list for the standalone
// classify-then-dispatch router: insert, search and clear, in that order.
// The returned slice is a copy; callers may reorder it freely.
func RouterOptions() []Option {
	opts := make([]Option, len(routerOptions))
	copy(opts, routerOptions)
	return opts
}

// ActionForOption maps a router option id back to its Action.
func ActionForOption(id string) (Action, bool) {
	switch id {
	case "insert":
		return ActionInsert, true
	case "search":
		return ActionSearch, true
	case "clear":
		return ActionClearSearch, true
	}
	return "", false
}
