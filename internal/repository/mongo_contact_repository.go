package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
)

// MongoContactRepository reads contacts stored as loosely shaped BSON
// documents and exposes them in the same raw form as the Firestore source.
type MongoContactRepository struct {
	collection        *mongo.Collection
	partitionByDoctor bool
}

// NewMongoContactRepository creates a new repository
func NewMongoContactRepository(collection *mongo.Collection, partitionByDoctor bool) *MongoContactRepository {
	r := &MongoContactRepository{
		collection:        collection,
		partitionByDoctor: partitionByDoctor,
	}

	if partitionByDoctor {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "doctorId", Value: 1}},
				Options: options.Index().SetName("idx_doctor_id"),
			},
			{
				Keys:    bson.D{{Key: "doctor_id", Value: 1}},
				Options: options.Index().SetName("idx_doctor_id_snake"),
			},
		})
	}

	return r
}

// List returns every contact document, scoped to the session doctor when
// partitioning is enabled.
func (r *MongoContactRepository) List(ctx context.Context, session models.Session) ([]models.RawDocument, error) {
	filter := bson.M{}
	if r.partitionByDoctor {
		filter = doctorFilter(session.DoctorID)
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to list contacts", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err = cursor.All(ctx, &results); err != nil {
		return nil, apperrors.NewExternalError("failed to read contacts", err)
	}

	docs := make([]models.RawDocument, 0, len(results))
	for _, m := range results {
		docs = append(docs, documentFromBSON(m))
	}
	return docs, nil
}

// Get returns a NotFound error when no document matches the id (and doctor)
func (r *MongoContactRepository) Get(ctx context.Context, session models.Session, id string) (*models.RawDocument, error) {
	filter := idFilter(id)
	if r.partitionByDoctor {
		filter = bson.M{"$and": []bson.M{filter, doctorFilter(session.DoctorID)}}
	}

	var m bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("contact not found")
		}
		return nil, apperrors.NewExternalError("failed to fetch contact", err)
	}

	doc := documentFromBSON(m)
	return &doc, nil
}

// doctorFilter matches either spelling of the owner field the normalizer
// accepts.
func doctorFilter(doctorID string) bson.M {
	return bson.M{"$or": []bson.M{
		{"doctorId": doctorID},
		{"doctor_id": doctorID},
	}}
}

// idFilter matches either an ObjectID or a plain string _id.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": []bson.M{
			{"_id": oid},
			{"_id": id},
		}}
	}
	return bson.M{"_id": id}
}

func documentFromBSON(m bson.M) models.RawDocument {
	doc := models.RawDocument{Fields: make(map[string]models.Value, len(m))}

	switch id := m["_id"].(type) {
	case primitive.ObjectID:
		doc.Name = id.Hex()
		doc.CreateTime = id.Timestamp()
	case string:
		doc.Name = id
	case nil:
	default:
		doc.Name = fmt.Sprint(id)
	}

	for k, v := range m {
		if k == "_id" {
			continue
		}
		doc.Fields[k] = valueFromBSON(v)
	}

	if v, ok := doc.Field("createdAt"); ok && v.Kind == models.KindTimestamp {
		doc.CreateTime = v.Time
	}
	if v, ok := doc.Field("updatedAt"); ok && v.Kind == models.KindTimestamp {
		doc.UpdateTime = v.Time
	}
	return doc
}

func valueFromBSON(v interface{}) models.Value {
	switch x := v.(type) {
	case nil:
		return models.NullValue()
	case string:
		return models.StringValue(x)
	case int32:
		return models.IntegerValue(strconv.FormatInt(int64(x), 10))
	case int64:
		return models.IntegerValue(strconv.FormatInt(x, 10))
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return models.IntegerValue(strconv.FormatInt(int64(x), 10))
		}
		return models.StringValue(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		return models.StringValue(strconv.FormatBool(x))
	case primitive.DateTime:
		return models.TimestampValue(x.Time().UTC())
	case time.Time:
		return models.TimestampValue(x)
	case primitive.ObjectID:
		return models.StringValue(x.Hex())
	case primitive.Decimal128:
		return models.StringValue(x.String())
	case primitive.A:
		items := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := valueFromBSON(item).Text(); ok {
				items = append(items, s)
			}
		}
		return models.StringArrayValue(items...)
	case primitive.Null, primitive.Undefined:
		return models.NullValue()
	}
	// Embedded documents and exotic types carry nothing a contact can use.
	return models.NullValue()
}
