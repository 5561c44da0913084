package mongostore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	projection "github.com/hanpama/mongograph/internal/projection"
)

// Pattern: Result comparison
func TestProjectionDoc_Result(t *testing.T) {
	t.Run("Paths are sorted and _id is suppressed", func(t *testing.T) {
		got := ProjectionDoc(projection.Projection{"name": true, "address.city": true})
		want := bson.D{
			{Key: "address.city", Value: 1},
			{Key: "name", Value: 1},
			{Key: "_id", Value: 0},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("projection doc mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Requested _id is kept", func(t *testing.T) {
		got := ProjectionDoc(projection.Projection{"_id": true, "name": true})
		want := bson.D{
			{Key: "_id", Value: 1},
			{Key: "name", Value: 1},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("projection doc mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Empty projection still suppresses _id", func(t *testing.T) {
		got := ProjectionDoc(projection.Projection{})
		want := bson.D{{Key: "_id", Value: 0}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("projection doc mismatch (-want +got):\n%s", diff)
		}
	})
}
