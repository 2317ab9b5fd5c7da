// services/leaderboard.go - Cached leaderboard reads.
// Rankings come from the period-bucketed entries written during
// settlement; Redis fronts the hot boards with a short TTL.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gameplatform/config"
	"gameplatform/models"
)

// EntrySource reads ranked leaderboard entries. The production
// implementation lives in the database package.
type EntrySource interface {
	// TopEntries returns up to limit entries for a bucket ordered by
	// score descending, ties broken by lower time.
	TopEntries(gameID uint, period, periodKey string, limit int) ([]models.LeaderboardEntry, error)
	PlayerEntry(playerID, gameID uint, period, periodKey string) (*models.LeaderboardEntry, error)
	EntriesAhead(gameID uint, period, periodKey string, score, timeSeconds int) (int64, error)
}

// LeaderboardRow is one ranked line of a board.
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	PlayerID    uint   `json:"player_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	TimeSeconds int    `json:"time_seconds"`
	GamesCount  int    `json:"games_count"`
}

// Leaderboard is a full board page.
type Leaderboard struct {
	GameID    uint             `json:"game_id"`
	Period    string           `json:"period"`
	PeriodKey string           `json:"period_key"`
	Entries   []LeaderboardRow `json:"entries"`
}

// PlayerRank is a single player's standing in a bucket.
type PlayerRank struct {
	Rank        int64 `json:"rank"`
	Score       int   `json:"score"`
	TimeSeconds int   `json:"time_seconds"`
}

// LeaderboardService serves boards cache-aside: Redis hit first, the
// entry source on miss, cached for the configured TTL. A nil Redis
// client degrades to uncached reads.
type LeaderboardService struct {
	source EntrySource
	redis  *redis.Client
	cfg    *config.Config
	now    func() time.Time
}

// NewLeaderboardService builds the service around an entry source and an
// optional Redis client.
func NewLeaderboardService(source EntrySource, rdb *redis.Client, cfg *config.Config) *LeaderboardService {
	return &LeaderboardService{
		source: source,
		redis:  rdb,
		cfg:    cfg,
		now:    time.Now,
	}
}

// SetClock substitutes the time source, for tests.
func (l *LeaderboardService) SetClock(now func() time.Time) {
	l.now = now
}

func cacheKey(gameID uint, period, periodKey string) string {
	return fmt.Sprintf("leaderboard:%d:%s:%s", gameID, period, periodKey)
}

// GetLeaderboard returns the board for a standard period at the current
// instant.
func (l *LeaderboardService) GetLeaderboard(ctx context.Context, gameID uint, period string, limit int) (*Leaderboard, error) {
	switch period {
	case models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime:
	default:
		return nil, fmt.Errorf("invalid leaderboard period %q", period)
	}
	periodKey := models.PeriodKey(period, l.now(), l.cfg.Location())
	return l.board(ctx, gameID, period, periodKey, limit)
}

// GetChallengeLeaderboard returns the board for one daily challenge.
func (l *LeaderboardService) GetChallengeLeaderboard(ctx context.Context, gameID, challengeID uint, limit int) (*Leaderboard, error) {
	return l.board(ctx, gameID, models.PeriodChallenge, models.ChallengePeriodKey(challengeID), limit)
}

func (l *LeaderboardService) board(ctx context.Context, gameID uint, period, periodKey string, limit int) (*Leaderboard, error) {
	if limit <= 0 || limit > l.cfg.Leaderboards.DisplayLimit {
		limit = l.cfg.Leaderboards.DisplayLimit
	}

	key := cacheKey(gameID, period, periodKey)
	if cached := l.cacheGet(ctx, key); cached != nil {
		if len(cached.Entries) > limit {
			cached.Entries = cached.Entries[:limit]
		}
		return cached, nil
	}

	entries, err := l.source.TopEntries(gameID, period, periodKey, l.cfg.Leaderboards.DisplayLimit)
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{
		GameID:    gameID,
		Period:    period,
		PeriodKey: periodKey,
		Entries:   make([]LeaderboardRow, 0, len(entries)),
	}
	for i, e := range entries {
		row := LeaderboardRow{
			Rank:        i + 1,
			PlayerID:    e.PlayerID,
			Score:       e.Score,
			TimeSeconds: e.TimeSeconds,
			GamesCount:  e.GamesCount,
		}
		if e.Player != nil {
			row.DisplayName = e.Player.DisplayName
		}
		board.Entries = append(board.Entries, row)
	}

	l.cacheSet(ctx, key, board)

	if len(board.Entries) > limit {
		trimmed := *board
		trimmed.Entries = board.Entries[:limit]
		return &trimmed, nil
	}
	return board, nil
}

// GetPlayerRank returns the player's standing in a standard period, or
// nil when they have no entry in the bucket.
func (l *LeaderboardService) GetPlayerRank(ctx context.Context, playerID, gameID uint, period string) (*PlayerRank, error) {
	periodKey := models.PeriodKey(period, l.now(), l.cfg.Location())
	entry, err := l.source.PlayerEntry(playerID, gameID, period, periodKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ahead, err := l.source.EntriesAhead(gameID, period, periodKey, entry.Score, entry.TimeSeconds)
	if err != nil {
		return nil, err
	}
	return &PlayerRank{
		Rank:        ahead + 1,
		Score:       entry.Score,
		TimeSeconds: entry.TimeSeconds,
	}, nil
}

// InvalidateGame drops the cached boards for the game's current period
// buckets. Challenge boards simply age out of the TTL.
func (l *LeaderboardService) InvalidateGame(gameID uint) {
	if l.redis == nil {
		return
	}
	now := l.now()
	loc := l.cfg.Location()

	keys := make([]string, 0, len(models.StandardPeriods))
	for _, period := range models.StandardPeriods {
		keys = append(keys, cacheKey(gameID, period, models.PeriodKey(period, now, loc)))
	}
	if err := l.redis.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("❌ Leaderboard cache invalidation failed for game %d: %v", gameID, err)
	}
}

func (l *LeaderboardService) cacheGet(ctx context.Context, key string) *Leaderboard {
	if l.redis == nil {
		return nil
	}
	raw, err := l.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("❌ Leaderboard cache read failed: %v", err)
		}
		return nil
	}
	var board Leaderboard
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		log.Printf("❌ Leaderboard cache decode failed: %v", err)
		return nil
	}
	return &board
}

func (l *LeaderboardService) cacheSet(ctx context.Context, key string, board *Leaderboard) {
	if l.redis == nil {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, key, raw, l.cfg.CacheTTL()).Err(); err != nil {
		log.Printf("❌ Leaderboard cache write failed: %v", err)
	}
}
