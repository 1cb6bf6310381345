package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"doctorportal-be/internal/models"
)

func TestDocumentFromBSON(t *testing.T) {
	created := time.Date(2025, time.January, 14, 12, 0, 0, 0, time.UTC)
	updated := created.Add(3 * time.Hour)

	doc := documentFromBSON(bson.M{
		"_id":          "contact-1",
		"name":         "Jane Doe",
		"number":       int64(5551234),
		"visits":       int32(3),
		"score":        float64(4),
		"ratio":        1.5,
		"verified":     true,
		"createdAt":    primitive.NewDateTimeFromTime(created),
		"updatedAt":    updated,
		"keywords":     primitive.A{"Checkup", int32(2), nil},
		"doctorId":     "demo-doctor-001",
		"patient_type": nil,
		"meta":         bson.M{"source": "ivr"},
	})

	assert.Equal(t, "contact-1", doc.ID())
	assert.Equal(t, models.StringValue("Jane Doe"), doc.Fields["name"])
	assert.Equal(t, models.IntegerValue("5551234"), doc.Fields["number"])
	assert.Equal(t, models.IntegerValue("3"), doc.Fields["visits"])
	assert.Equal(t, models.IntegerValue("4"), doc.Fields["score"])
	assert.Equal(t, models.StringValue("1.5"), doc.Fields["ratio"])
	assert.Equal(t, models.StringValue("true"), doc.Fields["verified"])
	assert.Equal(t, models.StringArrayValue("Checkup", "2"), doc.Fields["keywords"])
	assert.Equal(t, models.KindNull, doc.Fields["patient_type"].Kind)
	assert.Equal(t, models.KindNull, doc.Fields["meta"].Kind)
	assert.True(t, created.Equal(doc.CreateTime))
	assert.True(t, updated.Equal(doc.UpdateTime))
}

func TestDocumentFromBSON_ObjectIDTimestampFallback(t *testing.T) {
	oid := primitive.NewObjectIDFromTimestamp(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	doc := documentFromBSON(bson.M{"_id": oid})

	assert.Equal(t, oid.Hex(), doc.ID())
	assert.True(t, doc.CreateTime.Equal(oid.Timestamp()))
	assert.True(t, doc.UpdateTime.IsZero())
}

func TestIDFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "plain-id"}, idFilter("plain-id"))

	hex := "65a1b2c3d4e5f60718293a4b"
	oid, _ := primitive.ObjectIDFromHex(hex)
	assert.Equal(t, bson.M{"$or": []bson.M{{"_id": oid}, {"_id": hex}}}, idFilter(hex))
}

func TestDoctorFilter_MatchesBothOwnerKeys(t *testing.T) {
	want := bson.M{"$or": []bson.M{
		{"doctorId": "demo-doctor-001"},
		{"doctor_id": "demo-doctor-001"},
	}}

	assert.Equal(t, want, doctorFilter("demo-doctor-001"))
}
