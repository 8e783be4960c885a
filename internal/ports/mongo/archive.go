package mongo

import (
	"context"
	"fmt"
	"time"

	"burako/internal/config"
	"burako/internal/domain"
	"burako/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const handCollection = "hand_results"

// Connect opens a client for cfg and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return client, nil
}

// Archive stores one document per scored hand, keyed by game and round.
type Archive struct {
	db  *mongo.Database
	now func() time.Time
}

func NewArchive(db *mongo.Database) *Archive {
	return &Archive{db: db, now: time.Now}
}

type teamDoc struct {
	Team           int  `bson:"team"`
	MeldPoints     int  `bson:"meld_points"`
	BurakoBonus    int  `bson:"burako_bonus"`
	MeldScore      int  `bson:"meld_score"`
	HandPenalty    int  `bson:"hand_penalty"`
	ClosingBonus   int  `bson:"closing_bonus"`
	ReservePenalty int  `bson:"reserve_penalty"`
	Delta          int  `bson:"delta"`
	Total          int  `bson:"total"`
	ReserveTaken   bool `bson:"reserve_taken"`
}

type handDoc struct {
	ID         string    `bson:"_id"`
	GameID     string    `bson:"game_id"`
	Round      int       `bson:"round"`
	Closer     int       `bson:"closer"`
	Winner     int       `bson:"winner"`
	Teams      []teamDoc `bson:"teams"`
	RecordedAt time.Time `bson:"recorded_at"`
}

func handID(gameID string, round int) string {
	return fmt.Sprintf("%s:%d", gameID, round)
}

// RecordHand upserts the hand so a repeated delivery does not duplicate it.
func (a *Archive) RecordHand(ctx context.Context, gameID string, result domain.HandResult) error {
	doc := toDoc(gameID, result)
	doc.RecordedAt = a.now()
	_, err := a.db.Collection(handCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("archive hand %s: %w", doc.ID, err)
	}
	return nil
}

// Hands returns the archived hands of gameID in round order.
func (a *Archive) Hands(ctx context.Context, gameID string) ([]domain.HandResult, error) {
	cur, err := a.db.Collection(handCollection).Find(ctx,
		bson.M{"game_id": gameID}, options.Find().SetSort(bson.D{{Key: "round", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find hands of %s: %w", gameID, err)
	}
	defer cur.Close(ctx)

	var docs []handDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode hands of %s: %w", gameID, err)
	}
	out := make([]domain.HandResult, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoc(d))
	}
	return out, nil
}

func toDoc(gameID string, r domain.HandResult) handDoc {
	doc := handDoc{
		ID:     handID(gameID, r.Round),
		GameID: gameID,
		Round:  r.Round,
		Closer: int(r.Closer),
		Winner: int(r.Winner),
	}
	for _, team := range domain.Teams {
		s, ok := r.Teams[team]
		if !ok {
			continue
		}
		doc.Teams = append(doc.Teams, teamDoc{
			Team:           int(team),
			MeldPoints:     s.MeldPoints,
			BurakoBonus:    s.BurakoBonus,
			MeldScore:      s.MeldScore,
			HandPenalty:    s.HandPenalty,
			ClosingBonus:   s.ClosingBonus,
			ReservePenalty: s.ReservePenalty,
			Delta:          s.Delta,
			Total:          s.Total,
			ReserveTaken:   s.ReserveTaken,
		})
	}
	return doc
}

func fromDoc(d handDoc) domain.HandResult {
	r := domain.HandResult{
		Round:  d.Round,
		Closer: domain.Team(d.Closer),
		Winner: domain.Team(d.Winner),
		Teams:  make(map[domain.Team]domain.TeamScore, len(d.Teams)),
	}
	for _, t := range d.Teams {
		r.Teams[domain.Team(t.Team)] = domain.TeamScore{
			MeldPoints:     t.MeldPoints,
			BurakoBonus:    t.BurakoBonus,
			MeldScore:      t.MeldScore,
			HandPenalty:    t.HandPenalty,
			ClosingBonus:   t.ClosingBonus,
			ReservePenalty: t.ReservePenalty,
			Delta:          t.Delta,
			Total:          t.Total,
			ReserveTaken:   t.ReserveTaken,
		}
	}
	return r
}

var _ ports.HandArchive = (*Archive)(nil)
