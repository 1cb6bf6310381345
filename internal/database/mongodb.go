package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database

	contactsCollection string
}

// NewMongoDB connects to MongoDB and pings it before returning.
func NewMongoDB(ctx context.Context, uri, dbName, contactsCollection string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("database", dbName).Msg("Connected to MongoDB")

	if contactsCollection == "" {
		contactsCollection = "contacts"
	}
	return &MongoDB{
		Client:             client,
		Database:           client.Database(dbName),
		contactsCollection: contactsCollection,
	}, nil
}

// Disconnect closes the client connection
func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// Collection helpers
func (m *MongoDB) Contacts() *mongo.Collection {
	return m.Database.Collection(m.contactsCollection)
}

// DoctorSettings returns the per-doctor settings collection
func (m *MongoDB) DoctorSettings() *mongo.Collection {
	return m.Database.Collection("doctor_settings")
}
