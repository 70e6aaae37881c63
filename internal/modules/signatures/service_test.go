package signatures

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"homologacao/internal/database"
	"homologacao/internal/domain"
	"homologacao/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSignatures(t *testing.T) (*Service, *repository.SignatureRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:sigs_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	repo := repository.NewSignatureRepository(db)
	return NewService(repo), repo
}

func TestRecord(t *testing.T) {
	svc, _ := setupSignatures(t)
	ctx := context.Background()

	sig, err := svc.Record(ctx, 1, domain.PartyCompany, true, "", 10)
	require.NoError(t, err)
	assert.True(t, sig.Confirmed)
	assert.False(t, sig.SignedAt.IsZero())
	assert.NotZero(t, sig.ID)

	// one signature per (case, party)
	_, err = svc.Record(ctx, 1, domain.PartyCompany, true, "", 11)
	assert.ErrorIs(t, err, ErrAlreadySigned)

	// the other party and other cases are untouched
	_, err = svc.Record(ctx, 1, domain.PartyUnion, false, "scan-77", 20)
	require.NoError(t, err)
	_, err = svc.Record(ctx, 2, domain.PartyCompany, true, "", 10)
	require.NoError(t, err)
}

func TestRecord_Validation(t *testing.T) {
	svc, _ := setupSignatures(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, "worker", true, "", 10)
	assert.ErrorIs(t, err, ErrValidation)

	// unconfirmed evidence needs an artifact
	_, err = svc.Record(ctx, 1, domain.PartyCompany, false, "", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecord_UniqueIndexBacksTheQuorum(t *testing.T) {
	svc, repo := setupSignatures(t)
	ctx := context.Background()

	// a second row for the pair is refused by the index itself, even
	// when the caller skipped the exists check
	_, err := svc.Record(ctx, 1, domain.PartyCompany, true, "", 10)
	require.NoError(t, err)
	err = repo.Create(ctx, &domain.Signature{CaseID: 1, Party: domain.PartyCompany, Confirmed: true, SignedBy: 11})
	assert.ErrorIs(t, err, repository.ErrDuplicateSignature)

	sigs, err := svc.ListByCase(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestRecord_ConcurrentSamePartySingleWinner(t *testing.T) {
	svc, _ := setupSignatures(t)
	ctx := context.Background()

	const signers = 16
	errs := make([]error, signers)
	var wg sync.WaitGroup
	for i := 0; i < signers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Record(ctx, 1, domain.PartyCompany, true, "", int64(i+1))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrAlreadySigned)
		}
	}
	assert.Equal(t, 1, wins)

	sigs, err := svc.ListByCase(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestIsComplete(t *testing.T) {
	svc, _ := setupSignatures(t)
	ctx := context.Background()

	complete, err := svc.IsComplete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = svc.Record(ctx, 1, domain.PartyCompany, true, "", 10)
	require.NoError(t, err)
	complete, err = svc.IsComplete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = svc.Record(ctx, 1, domain.PartyUnion, true, "", 20)
	require.NoError(t, err)
	complete, err = svc.IsComplete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, complete)

	sigs, err := svc.ListByCase(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}
