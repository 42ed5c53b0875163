package repository

import (
	"context"

	"github.com/prediag/inference-service/internal/prediag"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the case repository on the prediagnosticos and
// diagnosticos collections. Documents keep the field names of the existing
// deployment so the Go service can run against the same database.
type MongoRepo struct {
	cases       *mongo.Collection
	diagnostics *mongo.Collection
}

func NewMongoRepo(cases, diagnostics *mongo.Collection) *MongoRepo {
	// unique index on the case id; FK-style index on diagnostics
	caseIdx := mongo.IndexModel{Keys: bson.D{{Key: "prediagnostico_id", Value: 1}}, Options: options.Index().SetUnique(true)}
	cases.Indexes().CreateOne(context.Background(), caseIdx)
	diagIdx := mongo.IndexModel{Keys: bson.D{{Key: "prediagnostico_id", Value: 1}}, Options: options.Index().SetUnique(true)}
	diagnostics.Indexes().CreateOne(context.Background(), diagIdx)
	return &MongoRepo{cases: cases, diagnostics: diagnostics}
}

func (m *MongoRepo) CreateCase(ctx context.Context, p *prediag.Prediagnostic) error {
	_, err := m.cases.InsertOne(ctx, p)
	return err
}

func (m *MongoRepo) GetCase(ctx context.Context, id string) (*prediag.Prediagnostic, error) {
	var p prediag.Prediagnostic
	err := m.cases.FindOne(ctx, bson.M{"prediagnostico_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepo) ListCasesByUser(ctx context.Context, userID string) ([]*prediag.Prediagnostic, error) {
	cur, err := m.cases.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*prediag.Prediagnostic{}
	for cur.Next(ctx) {
		var p prediag.Prediagnostic
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (m *MongoRepo) SetCaseStatus(ctx context.Context, id, status string) error {
	res, err := m.cases.UpdateOne(ctx, bson.M{"prediagnostico_id": id}, bson.M{"$set": bson.M{"estado": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) CreateDiagnostic(ctx context.Context, d *prediag.Diagnostic) error {
	_, err := m.diagnostics.InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *MongoRepo) GetDiagnostic(ctx context.Context, prediagnosticID string) (*prediag.Diagnostic, error) {
	var d prediag.Diagnostic
	err := m.diagnostics.FindOne(ctx, bson.M{"prediagnostico_id": prediagnosticID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
