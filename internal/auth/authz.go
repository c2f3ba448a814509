package auth

import (
	"net/http"

	"pressroom/internal/entities"
)

// Verdict is the outcome of an authorization decision over a mutating
// operation. Exactly one verdict applies; callers map it straight to an
// HTTP status.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictUnauthenticated
	VerdictNotFound
	VerdictForbidden
)

// Status maps a verdict to its HTTP status code.
func (v Verdict) Status() int {
	switch v {
	case VerdictAllow:
		return http.StatusOK
	case VerdictUnauthenticated:
		return http.StatusUnauthorized
	case VerdictNotFound:
		return http.StatusNotFound
	case VerdictForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictUnauthenticated:
		return "unauthenticated"
	case VerdictNotFound:
		return "not found"
	case VerdictForbidden:
		return "forbidden"
	}
	return "unknown"
}

// CanMutate reports whether actor may delete the post: admins may mutate
// anything, otherwise only the author may.
func CanMutate(actor *entities.User, post *entities.Post) bool {
	if actor == nil || post == nil {
		return false
	}
	return actor.IsAdmin || post.AuthorID == actor.ID
}

// DecideMutation evaluates the gates for a mutating operation in order:
// authentication, then existence, then ownership/role. Each layer
// short-circuits with its own verdict; a later, weaker check is never
// reached once an earlier one has failed.
func DecideMutation(actor *entities.User, post *entities.Post) Verdict {
	if actor == nil {
		return VerdictUnauthenticated
	}
	if post == nil {
		return VerdictNotFound
	}
	if !CanMutate(actor, post) {
		return VerdictForbidden
	}
	return VerdictAllow
}
