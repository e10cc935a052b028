package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/RishulGupta/Finance-Coach-AI/internal/statement"
)

const (
	usersCollection = "users"
	csvCollection   = "csv"

	transactionsObject = "categorized_transactions.csv"
	summaryObject      = "spending_summary.csv"
)

// FirestoreStore persists upload metadata in Firestore and the CSV tables as
// Cloud Storage objects. Metadata lives at users/{uid}/csv/{period}; the
// tables at users/{uid}/csv/{period}/{name}.csv in the bucket.
type FirestoreStore struct {
	fs     *firestore.Client
	gcs    *storage.Client
	bucket string
}

// NewFirestoreStore creates a store backed by the given project and bucket.
func NewFirestoreStore(ctx context.Context, projectID, bucket string) (*FirestoreStore, error) {
	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	gcs, err := storage.NewClient(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &FirestoreStore{fs: fs, gcs: gcs, bucket: bucket}, nil
}

func (s *FirestoreStore) doc(userID string, period Period) *firestore.DocumentRef {
	return s.fs.Collection(usersCollection).Doc(userID).Collection(csvCollection).Doc(period.Key())
}

func objectPath(userID string, period Period, name string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", usersCollection, userID, csvCollection, period.Key(), name)
}

func (s *FirestoreStore) writeObject(ctx context.Context, path string, encode func(io.Writer) error) error {
	w := s.gcs.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = "text/csv"
	if err := encode(w); err != nil {
		w.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) readObject(ctx context.Context, path string) ([]byte, error) {
	r, err := s.gcs.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *FirestoreStore) SaveResult(ctx context.Context, userID string, period Period, result *Result) error {
	txPath := objectPath(userID, period, transactionsObject)
	sumPath := objectPath(userID, period, summaryObject)

	if err := s.writeObject(ctx, txPath, func(w io.Writer) error {
		return statement.EncodeTransactionsCSV(w, result.Transactions)
	}); err != nil {
		return err
	}
	if err := s.writeObject(ctx, sumPath, func(w io.Writer) error {
		return statement.EncodeSummariesCSV(w, result.Summaries)
	}); err != nil {
		return err
	}

	meta := result.Metadata
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}
	meta.StoragePaths = map[string]string{
		"transactions": txPath,
		"summary":      sumPath,
	}
	if _, err := s.doc(userID, period).Set(ctx, meta); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", period.Key(), err)
	}
	return nil
}

func (s *FirestoreStore) LoadResult(ctx context.Context, userID string, period Period) (*Result, error) {
	snap, err := s.doc(userID, period).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", period.Key(), err)
	}
	var meta Metadata
	if err := snap.DataTo(&meta); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", period.Key(), err)
	}

	txData, err := s.readObject(ctx, objectPath(userID, period, transactionsObject))
	if err != nil {
		return nil, err
	}
	txs, err := statement.DecodeTransactionsCSV(bytes.NewReader(txData))
	if err != nil {
		return nil, err
	}

	sumData, err := s.readObject(ctx, objectPath(userID, period, summaryObject))
	if err != nil {
		return nil, err
	}
	summaries, err := statement.DecodeSummariesCSV(bytes.NewReader(sumData))
	if err != nil {
		return nil, err
	}

	return &Result{Transactions: txs, Summaries: summaries, Metadata: meta}, nil
}

func (s *FirestoreStore) Exists(ctx context.Context, userID string, period Period) (bool, error) {
	_, err := s.doc(userID, period).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", period.Key(), err)
	}
	return true, nil
}

func (s *FirestoreStore) ListPeriods(ctx context.Context, userID string) ([]Period, error) {
	iter := s.fs.Collection(usersCollection).Doc(userID).Collection(csvCollection).
		OrderBy(firestore.DocumentID, firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var periods []Period
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing periods: %w", err)
		}
		t, err := time.Parse("2006_01", snap.Ref.ID)
		if err != nil {
			continue // skip documents that are not period keys
		}
		periods = append(periods, Period{Year: t.Year(), Month: t.Month()})
	}
	return periods, nil
}

func (s *FirestoreStore) Close() error {
	if err := s.fs.Close(); err != nil {
		s.gcs.Close()
		return err
	}
	return s.gcs.Close()
}
