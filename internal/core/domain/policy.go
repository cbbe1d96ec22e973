package domain

import "net/http"

// safeMethods are the read-only HTTP verbs that never mutate state.
var safeMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
}

// IsSafeMethod reports whether the verb is read-only.
func IsSafeMethod(method string) bool {
	_, ok := safeMethods[method]
	return ok
}

// Policy decides whether an actor may perform an HTTP-verb-classified action.
// A nil actor represents an anonymous request. Policies are pure predicates:
// denial is a false return, never an error.
type Policy interface {
	// Allow is the request-level check, evaluated before any resource load.
	Allow(actor *User, method string) bool
	// AllowObject is the object-level check, evaluated after the target is
	// loaded. authorID is the target's owner; it is empty for resources
	// without ownership. Only reachable when Allow already passed.
	AllowObject(actor *User, method string, authorID string) bool
}

// ReadOnlyOrAdmin permits safe verbs to anyone and unsafe verbs to
// admin-privileged actors only. Used by the catalog resources.
type ReadOnlyOrAdmin struct{}

func (ReadOnlyOrAdmin) Allow(actor *User, method string) bool {
	if IsSafeMethod(method) {
		return true
	}
	return actor != nil && actor.IsAdminPrivileged()
}

func (ReadOnlyOrAdmin) AllowObject(actor *User, method string, _ string) bool {
	return ReadOnlyOrAdmin{}.Allow(actor, method)
}

// AdminOnly requires an admin-privileged actor for every verb. Used by the
// users collection.
type AdminOnly struct{}

func (AdminOnly) Allow(actor *User, _ string) bool {
	return actor != nil && actor.IsAdminPrivileged()
}

func (AdminOnly) AllowObject(actor *User, method string, _ string) bool {
	return AdminOnly{}.Allow(actor, method)
}

// AuthorOrModeratorOrReadOnly permits safe verbs to anyone; unsafe verbs
// require authentication at the request level and, at the object level,
// ownership or moderator privilege. Used by reviews and comments.
type AuthorOrModeratorOrReadOnly struct{}

func (AuthorOrModeratorOrReadOnly) Allow(actor *User, method string) bool {
	return IsSafeMethod(method) || actor != nil
}

func (AuthorOrModeratorOrReadOnly) AllowObject(actor *User, method string, authorID string) bool {
	if IsSafeMethod(method) {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsModeratorPrivileged()
}

// SelfService syntactically restricts the verb set to read, partial update,
// and delete; create and full replace are rejected for every actor. Used by
// the users/me endpoint.
type SelfService struct{}

func (SelfService) Allow(_ *User, method string) bool {
	switch method {
	case http.MethodGet, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (SelfService) AllowObject(actor *User, method string, _ string) bool {
	return SelfService{}.Allow(actor, method)
}
