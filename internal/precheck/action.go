package precheck

// Action identifies the CRUD intent a pipeline run is validating for.
// It replaces free-form action strings so switches over it stay exhaustive.
type Action int

const (
	ActionCreate Action = iota
	ActionFullUpdate
	ActionPartialUpdate
	ActionDelete
)

// IsUpdate reports whether the action mutates an existing entity.
func (a Action) IsUpdate() bool {
	return a == ActionFullUpdate || a == ActionPartialUpdate
}

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionFullUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}
