package network

import (
	"context"
	"fmt"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// NewAnalyzer creates an Analyzer reading from store.
func NewAnalyzer(store club.Store, metrics metrics.Metrics) *Analyzer {
	return &Analyzer{store: store, metrics: metrics}
}

func (a *Analyzer) observe(operation string, start time.Time) {
	a.metrics.ObserveAnalyticsDuration(operation, time.Since(start).Seconds())
}

func (a *Analyzer) load(ctx context.Context) (*corpus, []club.Player, error) {
	snapshots, err := a.store.ListStatisticsSnapshots(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	players, err := a.store.ListPlayers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}
	results, err := a.store.ListMatchResults(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list match results: %w", err)
	}
	courts, err := a.store.ListCourts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list courts: %w", err)
	}
	return newCorpus(snapshots, players, results, courts), players, nil
}

func (a *Analyzer) loadPair(ctx context.Context, p1, p2 string) (*corpus, club.Player, club.Player, error) {
	if p1 == p2 {
		return nil, club.Player{}, club.Player{}, &club.ValidationError{Field: "player2", Message: "cannot compare a player with themselves"}
	}
	c, players, err := a.load(ctx)
	if err != nil {
		return nil, club.Player{}, club.Player{}, err
	}
	first, err := club.FindPlayer(players, p1)
	if err != nil {
		return nil, club.Player{}, club.Player{}, err
	}
	second, err := club.FindPlayer(players, p2)
	if err != nil {
		return nil, club.Player{}, club.Player{}, err
	}
	return c, first, second, nil
}

// TopPartners returns the players most often on playerID's team.
func (a *Analyzer) TopPartners(ctx context.Context, playerID string, limit int) ([]PlayerCount, error) {
	defer a.observe("top_partners", time.Now())
	c, players, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := club.FindPlayer(players, playerID); err != nil {
		return nil, err
	}
	partners, _ := tally(c.matches(StatsFilter{}), playerID)
	return c.rank(partners, limit), nil
}

// TopOpponents returns the players most often on the other team.
func (a *Analyzer) TopOpponents(ctx context.Context, playerID string, limit int) ([]PlayerCount, error) {
	defer a.observe("top_opponents", time.Now())
	c, players, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := club.FindPlayer(players, playerID); err != nil {
		return nil, err
	}
	_, opponents := tally(c.matches(StatsFilter{}), playerID)
	return c.rank(opponents, limit), nil
}

// PlayerComparison summarises all matches p1 and p2 played, together or against each other.
func (a *Analyzer) PlayerComparison(ctx context.Context, p1, p2 string) (Comparison, error) {
	defer a.observe("player_comparison", time.Now())
	c, first, second, err := a.loadPair(ctx, p1, p2)
	if err != nil {
		return Comparison{}, err
	}
	return c.comparison(first, second), nil
}

// HeadToHead returns the matches p1 and p2 played on opposing teams.
func (a *Analyzer) HeadToHead(ctx context.Context, p1, p2 string) (HeadToHead, error) {
	defer a.observe("head_to_head", time.Now())
	c, _, _, err := a.loadPair(ctx, p1, p2)
	if err != nil {
		return HeadToHead{}, err
	}
	return c.headToHead(p1, p2), nil
}

// PlayerStatistics builds the full profile of one player.
func (a *Analyzer) PlayerStatistics(ctx context.Context, playerID string, filter StatsFilter) (PlayerStatistics, error) {
	defer a.observe("player_statistics", time.Now())
	c, players, err := a.load(ctx)
	if err != nil {
		return PlayerStatistics{}, err
	}
	player, err := club.FindPlayer(players, playerID)
	if err != nil {
		return PlayerStatistics{}, err
	}
	return c.statistics(player, filter, DefaultLimit), nil
}
