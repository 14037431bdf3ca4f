package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"spacekit-api/internal/models"
)

func TestContactRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("server assigns the timestamp", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewContactRepository(mt.Coll)

		before := time.Now().UTC()
		msg := &models.ContactMessage{Name: "Ana", Email: "ana@example.com", Message: "hola", CreatedAt: before.Add(-time.Hour)}
		if err := repo.Create(context.Background(), msg); err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if msg.CreatedAt.Before(before) {
			mt.Errorf("expected createdAt >= %s, got %s", before, msg.CreatedAt)
		}
		if msg.ID.IsZero() {
			mt.Error("expected an id")
		}
	})
}

func TestContactRepository_FindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("keeps server order", func(mt *mtest.T) {
		newer := time.Now().UTC().Truncate(time.Millisecond)
		older := newer.Add(-time.Minute)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.contacts", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "B"}, {Key: "createdAt", Value: newer}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "A"}, {Key: "createdAt", Value: older}},
		))
		repo := NewContactRepository(mt.Coll)

		msgs, err := repo.FindAll(context.Background())
		if err != nil {
			mt.Fatalf("FindAll: %v", err)
		}
		if len(msgs) != 2 {
			mt.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if !msgs[0].CreatedAt.After(msgs[1].CreatedAt) {
			mt.Errorf("expected newest first, got %s then %s", msgs[0].CreatedAt, msgs[1].CreatedAt)
		}
		if got := findSort(mt); got != "createdAt:-1,_id:-1" {
			mt.Errorf("expected find sorted by createdAt then _id descending, got %q", got)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized", Name: "Unauthorized"}))
		repo := NewContactRepository(mt.Coll)

		if _, err := repo.FindAll(context.Background()); err == nil {
			mt.Fatal("expected an error")
		}
	})
}

// findSort devuelve el sort del primer comando find enviado, como "campo:dir,...".
func findSort(mt *mtest.T) string {
	mt.Helper()
	ev := mt.GetStartedEvent()
	if ev == nil || ev.CommandName != "find" {
		mt.Fatalf("expected a find command, got %v", ev)
	}
	sortDoc, ok := ev.Command.Lookup("sort").DocumentOK()
	if !ok {
		mt.Fatalf("find sent without sort: %s", ev.Command)
	}
	elems, err := sortDoc.Elements()
	if err != nil {
		mt.Fatalf("sort elements: %v", err)
	}
	keys := make([]string, 0, len(elems))
	for _, e := range elems {
		keys = append(keys, fmt.Sprintf("%s:%d", e.Key(), e.Value().AsInt64()))
	}
	return strings.Join(keys, ",")
}
