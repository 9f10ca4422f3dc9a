package order

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ordersCollection = "orders"

// NewFirestoreClient connects to project. credFile may be empty to use the
// application default credentials.
func NewFirestoreClient(ctx context.Context, project, credFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := firestore.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient (project=%s): %w", project, err)
	}
	return client, nil
}

// FirestoreStore writes each order as a new document in the orders collection.
type FirestoreStore struct {
	Client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{Client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.Client.Collection(ordersCollection)
}

func (s *FirestoreStore) Persist(ctx context.Context, o *Order) (string, error) {
	if s.Client == nil {
		return "", errors.New("firestore client is nil")
	}

	ref := s.col().NewDoc()
	if _, err := ref.Create(ctx, orderToDoc(o)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", ErrDuplicateOrder
		}
		return "", err
	}
	return ref.ID, nil
}

// orderToDoc maps an order to the stored document. createdAt is stamped by the server.
func orderToDoc(o *Order) map[string]any {
	items := o.Items
	if items == nil {
		items = []Item{}
	}

	doc := map[string]any{
		"customerName": o.CustomerName,
		"phone":        o.Phone,
		"address":      o.Address,
		"items":        items,
		"total":        o.Total,
		"status":       string(o.Status),
		"createdAt":    firestore.ServerTimestamp,
	}
	if o.Email != "" {
		doc["email"] = o.Email
	}
	if o.Note != "" {
		doc["note"] = o.Note
	}
	return doc
}
