// Package mongo persists the history log in a MongoDB collection, one
// document per message.
package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/relaychat/relaychat-server/internal/store"
)

// document mirrors store.Message with an insertion sequence number. The
// sequence breaks ordering ties between same-second writes, which the
// second-precision timestamp alone cannot order deterministically.
type document struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
	Seq       int64     `bson:"seq"`
}

// Options configures the MongoDB connection and collection.
type Options struct {
	URI        string
	Database   string
	Collection string
	Capacity   int
}

// Store implements store.HistoryStore over a MongoDB collection.
// Atomicity is delegated to the server's per-document operations;
// trimming is best-effort since reads always cap at the newest entries.
type Store struct {
	client   *mongo.Client
	col      *mongo.Collection
	capacity int
	seq      atomic.Int64
	log      *zerolog.Logger
}

// New connects to MongoDB, verifies the connection, and ensures the
// ordering index exists.
func New(ctx context.Context, opts Options, logger *zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{
		client:   client,
		col:      client.Database(opts.Database).Collection(opts.Collection),
		capacity: opts.Capacity,
		log:      logger,
	}

	index := mongo.IndexModel{Keys: bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "seq", Value: 1},
	}}
	if _, err := s.col.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	// Seed the sequence above anything a previous process could have
	// written, so ordering stays monotonic across restarts.
	s.seq.Store(time.Now().UnixNano())

	return s, nil
}

// Append inserts the message and trims documents beyond capacity.
// Trimming failures are logged, not reported: the message itself is
// durable and Recent caps at the newest entries anyway.
func (s *Store) Append(ctx context.Context, msg store.Message) error {
	doc := document{
		ID:        msg.ID,
		Username:  msg.Username,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt.UTC(),
		Seq:       s.seq.Add(1),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if err := s.trim(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to trim message history")
	}
	return nil
}

func (s *Store) trim(ctx context.Context) error {
	count, err := s.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return err
	}
	excess := count - int64(s.capacity)
	if excess <= 0 {
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}}).
		SetLimit(excess).
		SetProjection(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return err
	}

	var oldest []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &oldest); err != nil {
		return err
	}

	ids := make([]string, 0, len(oldest))
	for _, doc := range oldest {
		ids = append(ids, doc.ID)
	}
	_, err = s.col.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	return err
}

// Recent fetches the newest documents first and reverses them, returning
// up to limit messages ordered oldest to newest.
func (s *Store) Recent(ctx context.Context, limit int) ([]store.Message, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]store.Message, len(docs))
	for i, doc := range docs {
		// Reverse into oldest-first order.
		messages[len(docs)-1-i] = store.Message{
			ID:        doc.ID,
			Username:  doc.Username,
			Content:   doc.Content,
			CreatedAt: doc.Timestamp.UTC(),
		}
	}
	return messages, nil
}

// Clear deletes every document in the collection.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.col.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
