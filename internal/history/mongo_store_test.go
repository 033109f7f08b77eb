package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"FlousWise/internal/faults"
	"FlousWise/internal/models"
)

func newMockStore(mt *mtest.T) *MongoStore {
	return NewMongoStore(mt.Client, mt.DB.Name(), mt.Coll.Name())
}

func rawInt(v bson.RawValue) int64 {
	n, _ := v.AsInt64OK()
	return n
}

func TestMongoStore_Append(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successful insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := newMockStore(mt).Append(context.Background(), &models.ChatMessage{
			UserID:         "u1",
			ConversationID: "conv-1",
			Role:           models.RoleUser,
			Message:        "How do I save?",
			Timestamp:      time.Now(),
		})
		if err != nil {
			mt.Fatalf("Append() error = %v", err)
		}
	})

	mt.Run("write failures map to HistoryWriteError", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key",
		}))

		err := newMockStore(mt).Append(context.Background(), &models.ChatMessage{
			UserID:         "u1",
			ConversationID: "conv-1",
			Role:           models.RoleUser,
			Message:        "How do I save?",
			Timestamp:      time.Now(),
		})
		var writeErr *faults.HistoryWriteError
		if !errors.As(err, &writeErr) {
			mt.Fatalf("expected HistoryWriteError, got %T: %v", err, err)
		}
		if writeErr.ConversationID != "conv-1" {
			mt.Errorf("ConversationID = %q, want %q", writeErr.ConversationID, "conv-1")
		}
	})
}

func TestMongoStore_History(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("messages decode oldest first", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "userId", Value: "u1"},
			{Key: "conversationId", Value: "conv-1"},
			{Key: "role", Value: models.RoleUser},
			{Key: "message", Value: "How do I save?"},
			{Key: "timestamp", Value: base},
		})
		second := mtest.CreateCursorResponse(1, ns, mtest.NextBatch, bson.D{
			{Key: "userId", Value: "u1"},
			{Key: "conversationId", Value: "conv-1"},
			{Key: "role", Value: models.RoleAssistant},
			{Key: "message", Value: "Start with a budget."},
			{Key: "timestamp", Value: base.Add(time.Millisecond)},
		})
		killCursors := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, second, killCursors)

		msgs, err := newMockStore(mt).History(context.Background(), "u1", "conv-1", 0)
		if err != nil {
			mt.Fatalf("History() error = %v", err)
		}
		if len(msgs) != 2 {
			mt.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Role != models.RoleUser || msgs[0].Message != "How do I save?" {
			mt.Errorf("first message = %+v", msgs[0])
		}
		if msgs[1].Role != models.RoleAssistant {
			mt.Errorf("second message role = %q", msgs[1].Role)
		}
		if !msgs[1].Timestamp.After(msgs[0].Timestamp) {
			mt.Error("messages not in ascending timestamp order")
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected a find command, got %+v", evt)
		}
		if v, err := evt.Command.LookupErr("filter", "userId"); err != nil || v.StringValue() != "u1" {
			mt.Errorf("find filter userId = %v (%v)", v, err)
		}
		if v, err := evt.Command.LookupErr("filter", "conversationId"); err != nil || v.StringValue() != "conv-1" {
			mt.Errorf("find filter conversationId = %v (%v)", v, err)
		}
		sortVal, err := evt.Command.LookupErr("sort", "timestamp")
		if err != nil {
			mt.Fatalf("find command missing timestamp sort: %v", err)
		}
		if rawInt(sortVal) != 1 {
			mt.Errorf("timestamp sort = %v, want 1 (ascending)", sortVal)
		}
	})
}

func TestMongoStore_ListConversations(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("one summary per conversation, newest first", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

		// Grouped output for a user whose three messages span two
		// conversations: each conversation collapses to its latest message.
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "conv-2"},
				{Key: "latestMessage", Value: "Open a savings account first."},
				{Key: "latestRole", Value: models.RoleAssistant},
				{Key: "latestTimestamp", Value: base.Add(time.Minute)},
			},
			bson.D{
				{Key: "_id", Value: "conv-1"},
				{Key: "latestMessage", Value: "How do I budget?"},
				{Key: "latestRole", Value: models.RoleUser},
				{Key: "latestTimestamp", Value: base},
			},
		)
		killCursors := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, killCursors)

		summaries, err := newMockStore(mt).ListConversations(context.Background(), "u1", 10)
		if err != nil {
			mt.Fatalf("ListConversations() error = %v", err)
		}
		if len(summaries) != 2 {
			mt.Fatalf("expected exactly 2 summaries, got %d", len(summaries))
		}

		// Field mapping check: a typo'd bson tag would silently decode to
		// zero values instead of erroring.
		if summaries[0].ConversationID != "conv-2" {
			mt.Errorf("ConversationID = %q, want %q", summaries[0].ConversationID, "conv-2")
		}
		if summaries[0].LatestMessage != "Open a savings account first." {
			mt.Errorf("LatestMessage = %q", summaries[0].LatestMessage)
		}
		if summaries[0].LatestRole != models.RoleAssistant {
			mt.Errorf("LatestRole = %q", summaries[0].LatestRole)
		}
		if !summaries[0].Timestamp.Equal(base.Add(time.Minute)) {
			mt.Errorf("Timestamp = %v", summaries[0].Timestamp)
		}
		if summaries[1].ConversationID != "conv-1" {
			mt.Errorf("second ConversationID = %q, want %q", summaries[1].ConversationID, "conv-1")
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "aggregate" {
			mt.Fatalf("expected an aggregate command, got %+v", evt)
		}
		pipeline, err := evt.Command.LookupErr("pipeline")
		if err != nil {
			mt.Fatalf("aggregate command missing pipeline: %v", err)
		}
		stages, err := pipeline.Array().Values()
		if err != nil {
			mt.Fatalf("reading pipeline stages: %v", err)
		}
		if len(stages) != 5 {
			mt.Fatalf("expected 5 pipeline stages, got %d", len(stages))
		}

		if v, err := stages[0].Document().LookupErr("$match", "userId"); err != nil || v.StringValue() != "u1" {
			mt.Errorf("$match userId = %v (%v)", v, err)
		}
		if v, err := stages[1].Document().LookupErr("$sort", "timestamp"); err != nil || rawInt(v) != -1 {
			mt.Errorf("pre-group sort must be timestamp descending, got %v (%v)", v, err)
		}
		// $first after the descending sort keeps each conversation's latest message.
		group := stages[2].Document()
		if v, err := group.LookupErr("$group", "_id"); err != nil || v.StringValue() != "$conversationId" {
			mt.Errorf("$group _id = %v (%v)", v, err)
		}
		if v, err := group.LookupErr("$group", "latestMessage", "$first"); err != nil || v.StringValue() != "$message" {
			mt.Errorf("$group latestMessage = %v (%v)", v, err)
		}
		if v, err := group.LookupErr("$group", "latestRole", "$first"); err != nil || v.StringValue() != "$role" {
			mt.Errorf("$group latestRole = %v (%v)", v, err)
		}
		if v, err := group.LookupErr("$group", "latestTimestamp", "$first"); err != nil || v.StringValue() != "$timestamp" {
			mt.Errorf("$group latestTimestamp = %v (%v)", v, err)
		}
		if v, err := stages[3].Document().LookupErr("$sort", "latestTimestamp"); err != nil || rawInt(v) != -1 {
			mt.Errorf("final sort must be latestTimestamp descending, got %v (%v)", v, err)
		}
		if v, err := stages[4].Document().LookupErr("$limit"); err != nil || rawInt(v) != 10 {
			mt.Errorf("$limit = %v (%v), want 10", v, err)
		}
	})

	mt.Run("no limit stage when limit is zero", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		summaries, err := newMockStore(mt).ListConversations(context.Background(), "u1", 0)
		if err != nil {
			mt.Fatalf("ListConversations() error = %v", err)
		}
		if len(summaries) != 0 {
			mt.Errorf("expected no summaries, got %d", len(summaries))
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "aggregate" {
			mt.Fatalf("expected an aggregate command, got %+v", evt)
		}
		pipeline, err := evt.Command.LookupErr("pipeline")
		if err != nil {
			mt.Fatalf("aggregate command missing pipeline: %v", err)
		}
		stages, err := pipeline.Array().Values()
		if err != nil {
			mt.Fatalf("reading pipeline stages: %v", err)
		}
		if len(stages) != 4 {
			mt.Errorf("expected 4 pipeline stages without a limit, got %d", len(stages))
		}
	})
}
