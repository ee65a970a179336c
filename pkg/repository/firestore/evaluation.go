package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// CollectionEvaluations is the Firestore collection holding evaluation
// records. The migrate command creates its indexes.
const CollectionEvaluations = "evaluations"

// evaluationDoc is the Firestore document representation of
// model.Evaluation. The result payload is stored as JSON so that nested
// map keys never collide with Firestore field path rules.
type evaluationDoc struct {
	ID         string    `firestore:"ID"`
	URL        string    `firestore:"URL"`
	Status     string    `firestore:"Status"`
	ResultJSON []byte    `firestore:"ResultJSON,omitempty"`
	Error      string    `firestore:"Error,omitempty"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
	UpdatedAt  time.Time `firestore:"UpdatedAt"`
}

func toEvaluationDoc(e *model.Evaluation) (*evaluationDoc, error) {
	doc := &evaluationDoc{
		ID:        e.ID.String(),
		URL:       e.URL,
		Status:    e.Status.String(),
		Error:     e.Error,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Result != nil {
		raw, err := json.Marshal(e.Result)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal evaluation result")
		}
		doc.ResultJSON = raw
	}
	return doc, nil
}

func fromEvaluationDoc(d *evaluationDoc) (*model.Evaluation, error) {
	e := &model.Evaluation{
		ID:        types.EvaluationID(d.ID),
		URL:       d.URL,
		Status:    types.EvaluationStatus(d.Status),
		Error:     d.Error,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.ResultJSON) > 0 {
		var result model.EvaluationResult
		if err := json.Unmarshal(d.ResultJSON, &result); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal evaluation result")
		}
		e.Result = &result
	}
	return e, nil
}

func docToEvaluation(doc *firestore.DocumentSnapshot) (*model.Evaluation, error) {
	var d evaluationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromEvaluationDoc(&d)
}

// Client is the Firestore-backed evaluation store.
type Client struct {
	client *firestore.Client
}

var _ interfaces.EvaluationRepository = &Client{}

func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}
	return &Client{client: client}, nil
}

func (r *Client) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionEvaluations)
}

func (r *Client) Put(ctx context.Context, eval *model.Evaluation) error {
	if err := eval.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid evaluation")
	}

	saved := *eval
	saved.UpdatedAt = time.Now().UTC()

	doc, err := toEvaluationDoc(&saved)
	if err != nil {
		return err
	}
	if _, err := r.collection().Doc(saved.ID.String()).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save evaluation", goerr.V("id", saved.ID))
	}
	return nil
}

func (r *Client) Get(ctx context.Context, id types.EvaluationID) (*model.Evaluation, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get evaluation", goerr.V("id", id))
	}

	e, err := docToEvaluation(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal evaluation", goerr.V("id", id))
	}
	return e, nil
}

func (r *Client) List(ctx context.Context, limit int) ([]*model.Evaluation, error) {
	query := r.collection().OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var result []*model.Evaluation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list evaluations")
		}

		e, err := docToEvaluation(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal evaluation", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, e)
	}
	return result, nil
}

func (r *Client) UpdateStatus(ctx context.Context, id types.EvaluationID, next types.EvaluationStatus) error {
	if err := next.Validate(); err != nil {
		return err
	}

	docRef := r.collection().Doc(id.String())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("evaluation not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get evaluation", goerr.V("id", id))
		}

		var d evaluationDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal evaluation", goerr.V("id", id))
		}

		current := types.EvaluationStatus(d.Status)
		if !current.CanTransitionTo(next) {
			return goerr.New("illegal status transition",
				goerr.V("id", id), goerr.V("from", current), goerr.V("to", next))
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "Status", Value: next.String()},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update evaluation status", goerr.V("id", id))
	}
	return nil
}

func (r *Client) Close() error {
	return r.client.Close()
}
