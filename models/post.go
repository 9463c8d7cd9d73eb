package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post keeps a snapshot of the author's name and avatar taken at creation;
// later changes to the user are not reflected here.
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Text     string             `bson:"text" json:"text"`
	Name     string             `bson:"name" json:"name"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Likes    []Like             `bson:"likes" json:"likes"`
	Comments []Comment          `bson:"comments" json:"comments"`
	Date     time.Time          `bson:"date" json:"date"`
}

type Like struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	User primitive.ObjectID `bson:"user" json:"user"`
}

func (l *Like) EntryID() primitive.ObjectID      { return l.ID }
func (l *Like) SetEntryID(id primitive.ObjectID) { l.ID = id }

type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	User   primitive.ObjectID `bson:"user" json:"user"`
	Text   string             `bson:"text" json:"text"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
	Date   time.Time          `bson:"date" json:"date"`
}

func (c *Comment) EntryID() primitive.ObjectID      { return c.ID }
func (c *Comment) SetEntryID(id primitive.ObjectID) { c.ID = id }
