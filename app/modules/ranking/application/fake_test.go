package rankingservice

import (
	"context"
	"sync"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
)

// FakeResolver records calls and delegates to the *Func fields.
type FakeResolver struct {
	ResolveFunc        func(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error)
	ResolveLicenseFunc func(ctx context.Context, id string) (identityservice.Outcome, error)

	mu       sync.Mutex
	queries  []identityservice.Query
	licenses []string
}

func (f *FakeResolver) Resolve(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.ResolveFunc != nil {
		return f.ResolveFunc(ctx, q)
	}
	return identityservice.Outcome{Classification: identityservice.ClassUnmatchedInScope}, nil
}

func (f *FakeResolver) ResolveLicense(ctx context.Context, id string) (identityservice.Outcome, error) {
	f.mu.Lock()
	f.licenses = append(f.licenses, id)
	f.mu.Unlock()
	if f.ResolveLicenseFunc != nil {
		return f.ResolveLicenseFunc(ctx, id)
	}
	return identityservice.Outcome{Classification: identityservice.ClassUnmatchedInScope}, nil
}

func (f *FakeResolver) Queries() []identityservice.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]identityservice.Query(nil), f.queries...)
}

func (f *FakeResolver) Licenses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.licenses...)
}

// FakeFeed serves canned competitions and results.
type FakeFeed struct {
	CompetitionsFunc func(ctx context.Context, t rankingdomain.Tournament) ([]rankingdomain.Competition, error)
	ResultsFunc      func(ctx context.Context, t rankingdomain.Tournament, c rankingdomain.Competition) ([]rankingdomain.ResultFragment, error)
}

func (f *FakeFeed) Competitions(ctx context.Context, t rankingdomain.Tournament) ([]rankingdomain.Competition, error) {
	if f.CompetitionsFunc != nil {
		return f.CompetitionsFunc(ctx, t)
	}
	return nil, nil
}

func (f *FakeFeed) Results(ctx context.Context, t rankingdomain.Tournament, c rankingdomain.Competition) ([]rankingdomain.ResultFragment, error) {
	if f.ResultsFunc != nil {
		return f.ResultsFunc(ctx, t, c)
	}
	return nil, nil
}
