package order

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore writes each order as one document, items embedded.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(ordersCollection)}
}

type orderDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	CustomerName string             `bson:"customer_name"`
	Phone        string             `bson:"phone"`
	Email        string             `bson:"email,omitempty"`
	Address      string             `bson:"address"`
	Note         string             `bson:"note,omitempty"`
	Items        []Item             `bson:"items"`
	Total        int64              `bson:"total"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toDocument(o *Order, now time.Time) orderDocument {
	items := o.Items
	if items == nil {
		items = []Item{}
	}
	return orderDocument{
		ID:           primitive.NewObjectID(),
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Email:        o.Email,
		Address:      o.Address,
		Note:         o.Note,
		Items:        items,
		Total:        o.Total,
		Status:       string(o.Status),
		CreatedAt:    now.UTC(),
	}
}

func (s *MongoStore) Persist(ctx context.Context, o *Order) (string, error) {
	doc := toDocument(o, time.Now())
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateOrder
		}
		return "", fmt.Errorf("insert order: %w", err)
	}
	return doc.ID.Hex(), nil
}
