package types

// Intent names a user intent that produced a new render of a session
type Intent string

const (
	IntentInit   Intent = "init"
	IntentReset  Intent = "reset"
	IntentEnd    Intent = "end"
	IntentAdd    Intent = "add"
	IntentDelete Intent = "delete"
	IntentFilter Intent = "filter"
	IntentSelect Intent = "select"
)

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}
