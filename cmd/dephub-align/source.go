package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dephub/dephub-align/align"
	"github.com/dephub/dephub-align/internal/config"
	"github.com/dephub/dephub-align/providers/api/maven"
	"github.com/dephub/dephub-align/providers/fetchers"
)

// newSource builds the metadata source selected by the repository configuration.
func newSource(ctx context.Context, s *settings, r *reactor) (align.MetadataVersionSource, error) {
	repo := s.cfg.Repository
	layout := align.RepositoryLayout(repo.Layout)

	switch repo.Type {
	case config.SourceNone, "":
		return align.NewMemorySource(r.file.Published)
	case config.SourceHTTP:
		u, err := url.Parse(repo.URL)
		if err != nil {
			return nil, &align.ConfigurationError{Option: "repository.url", Err: err}
		}
		fetcher, err := fetchers.NewHTTPFetcher(nil, u)
		if err != nil {
			return nil, &align.ConfigurationError{Option: "repository.url", Err: err}
		}
		return align.NewRepositorySource(fetcher, layout)
	case config.SourceGitHub:
		return align.NewGitSource(nil, repo.Git, repo.Ref, repo.Root, layout)
	case config.SourceSearch:
		var u *url.URL
		if repo.URL != "" {
			var err error
			if u, err = url.Parse(repo.URL); err != nil {
				return nil, &align.ConfigurationError{Option: "repository.url", Err: err}
			}
		}
		client, err := maven.NewClient(nil, u, maven.WithRateLimit(repo.RateLimit))
		if err != nil {
			return nil, &align.ConfigurationError{Option: "repository.url", Err: err}
		}
		return align.NewMavenSource(client), nil
	case config.SourceLookup:
		u, err := url.Parse(repo.URL)
		if err != nil {
			return nil, &align.ConfigurationError{Option: "repository.url", Err: err}
		}
		ls, err := align.NewLookupSource(nil, u, r.coordinates, s.policy.SuffixText())
		if err != nil {
			return nil, err
		}
		if err := ls.Prefetch(ctx); err != nil {
			// individual lookups are retried by the calculator
			s.logger.Warn("lookup prefetch failed", slog.Any("error", err))
		}
		return ls, nil
	}
	return nil, &align.ConfigurationError{Option: "repository.type", Err: fmt.Errorf("unknown source %q", repo.Type)}
}

// calculateReactor aligns every project of the reactor.
func calculateReactor(ctx context.Context, s *settings, r *reactor) (align.ReactorVersionMap, error) {
	source, err := newSource(ctx, s, r)
	if err != nil {
		return nil, err
	}
	calc := align.NewCalculator(
		align.WithLogger(s.logger),
		align.WithLookupConcurrency(s.cfg.LookupConcurrency),
	)
	return calc.CalculateAll(ctx, r.coordinates, s.policy, source)
}
