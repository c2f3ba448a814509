package auth

import (
	"net/http"
	"testing"

	"pressroom/internal/entities"
)

func TestCanMutate(t *testing.T) {
	owner := &entities.User{ID: 1, Username: "owner"}
	admin := &entities.User{ID: 2, Username: "admin", IsAdmin: true}
	other := &entities.User{ID: 3, Username: "other"}
	post := &entities.Post{ID: 10, AuthorID: owner.ID}

	tests := []struct {
		name  string
		actor *entities.User
		post  *entities.Post
		want  bool
	}{
		{name: "owner may mutate own post", actor: owner, post: post, want: true},
		{name: "admin may mutate any post", actor: admin, post: post, want: true},
		{name: "non-owner may not mutate", actor: other, post: post, want: false},
		{name: "nil actor may not mutate", actor: nil, post: post, want: false},
		{name: "nil post may not be mutated", actor: admin, post: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.actor, tt.post); got != tt.want {
				t.Errorf("CanMutate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideMutation_Ordering(t *testing.T) {
	owner := &entities.User{ID: 1, Username: "owner"}
	other := &entities.User{ID: 3, Username: "other"}
	post := &entities.Post{ID: 10, AuthorID: owner.ID}

	tests := []struct {
		name  string
		actor *entities.User
		post  *entities.Post
		want  Verdict
	}{
		{
			name:  "owner deleting own post",
			actor: owner,
			post:  post,
			want:  VerdictAllow,
		},
		{
			// Anonymous outranks everything else: an anonymous caller must
			// not learn whether the post exists.
			name:  "anonymous with missing post",
			actor: nil,
			post:  nil,
			want:  VerdictUnauthenticated,
		},
		{
			name:  "anonymous with existing post",
			actor: nil,
			post:  post,
			want:  VerdictUnauthenticated,
		},
		{
			name:  "authenticated with missing post",
			actor: other,
			post:  nil,
			want:  VerdictNotFound,
		},
		{
			name:  "authenticated non-owner",
			actor: other,
			post:  post,
			want:  VerdictForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideMutation(tt.actor, tt.post); got != tt.want {
				t.Errorf("DecideMutation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerdict_Status(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    int
	}{
		{VerdictAllow, http.StatusOK},
		{VerdictUnauthenticated, http.StatusUnauthorized},
		{VerdictNotFound, http.StatusNotFound},
		{VerdictForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.verdict.String(), func(t *testing.T) {
			if got := tt.verdict.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}
