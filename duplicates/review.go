package duplicates

import (
	"context"
	"errors"
	"fmt"

	"github.com/aqlanhadi/sbtax/logging"
	"github.com/sirupsen/logrus"
)

var ErrSamePair = errors.New("a transaction cannot duplicate itself")

// Store is the ledger the review workflow reads from and records decisions in.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=review.go Store
type Store interface {
	ActiveTransactions(ctx context.Context) ([]Transaction, error)
	DismissedPairs(ctx context.Context) ([]Pair, error)
	MarkDuplicate(ctx context.Context, duplicateID, originalID int64) error
	DismissPair(ctx context.Context, pair Pair) error
}

// Service runs duplicate detection over the active ledger.
type Service struct {
	store Store
	log   logrus.FieldLogger
}

func NewService(store Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log}
}

func (s *Service) snapshot(ctx context.Context) ([]Transaction, map[Pair]bool, error) {
	txs, err := s.store.ActiveTransactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load active transactions: %w", err)
	}

	pairs, err := s.store.DismissedPairs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load dismissed pairs: %w", err)
	}

	dismissed := make(map[Pair]bool, len(pairs))
	for _, p := range pairs {
		dismissed[NewPair(p.A, p.B)] = true
	}
	return txs, dismissed, nil
}

// Candidates lists every open duplicate suggestion.
func (s *Service) Candidates(ctx context.Context) ([]Match, error) {
	txs, dismissed, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Matches(txs, WithoutDismissed(txs, Detect(txs), dismissed)), nil
}

// AutoAccept marks every pair the policy allows and returns what was marked
// along with what is left for review. Running it again is harmless since
// marked rows are no longer active.
func (s *Service) AutoAccept(ctx context.Context) (accepted, review []Match, err error) {
	txs, dismissed, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	accepted, review = AutoAccept(txs, Detect(txs), dismissed)
	for _, m := range accepted {
		if err := s.store.MarkDuplicate(ctx, m.Duplicate.ID, m.Original.ID); err != nil {
			return nil, nil, fmt.Errorf("could not mark transaction %d: %w", m.Duplicate.ID, err)
		}
		s.log.WithFields(logrus.Fields{
			logging.FieldPair: m.Pair(),
			"score":           m.Score,
		}).Debug("marked duplicate")
	}

	s.log.WithFields(logrus.Fields{
		"accepted": len(accepted),
		"review":   len(review),
	}).Info("duplicate scan finished")
	return accepted, review, nil
}

// Confirm records a reviewed pair as a duplicate.
func (s *Service) Confirm(ctx context.Context, duplicateID, originalID int64) error {
	if duplicateID == originalID {
		return ErrSamePair
	}
	return s.store.MarkDuplicate(ctx, duplicateID, originalID)
}

// Dismiss records that two transactions are distinct so the pair is never
// suggested again.
func (s *Service) Dismiss(ctx context.Context, a, b int64) error {
	if a == b {
		return ErrSamePair
	}
	return s.store.DismissPair(ctx, NewPair(a, b))
}
