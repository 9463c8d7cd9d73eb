// Package subdoc edits the ordered entry lists embedded in a parent
// document: likes and comments on a post, experience and education on a
// profile.
//
// Lists are newest-first. Every function returns a new slice and leaves its
// input untouched, so a caller that fails later can persist nothing.
package subdoc

import (
	"errors"

	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAlreadyLiked = errors.New("post already liked")
	ErrNotLiked     = errors.New("post has not yet been liked")
)

// Entry is implemented by pointers to embedded list elements.
type Entry[E any] interface {
	*E
	EntryID() primitive.ObjectID
	SetEntryID(primitive.ObjectID)
}

// Insert gives entry a fresh id and places it at the front of list.
func Insert[E any, P Entry[E]](list []E, entry E) []E {
	P(&entry).SetEntryID(primitive.NewObjectID())

	out := make([]E, 0, len(list)+1)
	out = append(out, entry)
	return append(out, list...)
}

// RemoveByEntryID drops the first entry whose own id is id. It never looks
// at who authored the entry.
func RemoveByEntryID[E any, P Entry[E]](list []E, id primitive.ObjectID) ([]E, bool) {
	i := indexOf[E, P](list, id)
	if i < 0 {
		return list, false
	}
	return without(list, i), true
}

// Find returns the entry with the given id.
func Find[E any, P Entry[E]](list []E, id primitive.ObjectID) (E, bool) {
	i := indexOf[E, P](list, id)
	if i < 0 {
		var zero E
		return zero, false
	}
	return list[i], true
}

// ToggleLike adds a like by userID, refusing a second one.
func ToggleLike(likes []models.Like, userID primitive.ObjectID) ([]models.Like, error) {
	if likedBy(likes, userID) >= 0 {
		return likes, ErrAlreadyLiked
	}
	return Insert(likes, models.Like{User: userID}), nil
}

// RemoveLike drops the first like by userID.
func RemoveLike(likes []models.Like, userID primitive.ObjectID) ([]models.Like, error) {
	i := likedBy(likes, userID)
	if i < 0 {
		return likes, ErrNotLiked
	}
	return without(likes, i), nil
}

func likedBy(likes []models.Like, userID primitive.ObjectID) int {
	for i := range likes {
		if likes[i].User == userID {
			return i
		}
	}
	return -1
}

func indexOf[E any, P Entry[E]](list []E, id primitive.ObjectID) int {
	for i := range list {
		if P(&list[i]).EntryID() == id {
			return i
		}
	}
	return -1
}

func without[E any](list []E, i int) []E {
	out := make([]E, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
