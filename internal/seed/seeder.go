// Package seed fills a database with fake race fans. Everything goes through
// the action service so counters, activities and notifications line up.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shaygp/boxd/internal/actions"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/repository"
	"go.uber.org/zap"
)

// Options sizes a seed run
type Options struct {
	Users          int
	FollowsPerUser int
	LogsPerUser    int
	ListsPerUser   int
	LikesPerUser   int
	CommentsPerLog int
	// Seed makes runs reproducible; zero keeps the faker's random seed
	Seed int64
}

// DevOptions is a small but lively dataset
var DevOptions = Options{
	Users:          40,
	FollowsPerUser: 8,
	LogsPerUser:    5,
	ListsPerUser:   1,
	LikesPerUser:   10,
	CommentsPerLog: 2,
}

// Summary counts what a run created
type Summary struct {
	Users    int `json:"users"`
	Follows  int `json:"follows"`
	Logs     int `json:"logs"`
	Lists    int `json:"lists"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Degraded int `json:"degraded"`
}

var calendar = []models.RaceMetadata{
	{Round: 1, RaceName: "Bahrain Grand Prix", Circuit: "Bahrain International Circuit"},
	{Round: 3, RaceName: "Australian Grand Prix", Circuit: "Albert Park"},
	{Round: 6, RaceName: "Miami Grand Prix", Circuit: "Miami International Autodrome"},
	{Round: 8, RaceName: "Monaco Grand Prix", Circuit: "Circuit de Monaco"},
	{Round: 9, RaceName: "Canadian Grand Prix", Circuit: "Circuit Gilles Villeneuve"},
	{Round: 12, RaceName: "British Grand Prix", Circuit: "Silverstone"},
	{Round: 14, RaceName: "Belgian Grand Prix", Circuit: "Spa-Francorchamps"},
	{Round: 16, RaceName: "Italian Grand Prix", Circuit: "Monza"},
	{Round: 18, RaceName: "Singapore Grand Prix", Circuit: "Marina Bay"},
	{Round: 21, RaceName: "Sao Paulo Grand Prix", Circuit: "Interlagos"},
}

// Seeder creates fake users and drives actions between them
type Seeder struct {
	profiles repository.ProfileRepository
	actions  *actions.Service
}

func NewSeeder(profiles repository.ProfileRepository, svc *actions.Service) *Seeder {
	return &Seeder{profiles: profiles, actions: svc}
}

// Run seeds according to opts
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Seed != 0 {
		// Seed only fails for invalid sources
		_ = gofakeit.Seed(opts.Seed)
	}
	sum := &Summary{}

	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return sum, fmt.Errorf("failed to seed users: %w", err)
	}
	sum.Users = len(users)
	if len(users) < 2 {
		return sum, nil
	}

	var logs []*models.RaceLog
	for _, u := range users {
		for range opts.LogsPerUser {
			res, err := s.actions.LogRace(ctx, u.ID, fakeLog())
			if !s.tally(&sum.Logs, &sum.Degraded, err) {
				return sum, fmt.Errorf("failed to seed race logs: %w", err)
			}
			if res != nil && res.RaceLog != nil {
				logs = append(logs, res.RaceLog)
			}
		}
		for range opts.ListsPerUser {
			_, err := s.actions.CreateList(ctx, u.ID, actions.ListInput{
				Title:       "Best of " + gofakeit.City(),
				Description: gofakeit.HipsterSentence(),
			})
			if !s.tally(&sum.Lists, &sum.Degraded, err) {
				return sum, fmt.Errorf("failed to seed lists: %w", err)
			}
		}
	}

	for _, u := range users {
		for range opts.FollowsPerUser {
			other := users[gofakeit.Number(0, len(users)-1)]
			if other.ID == u.ID {
				continue
			}
			_, err := s.actions.Follow(ctx, u.ID, other.ID)
			if !s.tally(&sum.Follows, &sum.Degraded, err) {
				return sum, fmt.Errorf("failed to seed follows: %w", err)
			}
		}
	}

	if len(logs) == 0 {
		return sum, nil
	}
	for _, u := range users {
		for range opts.LikesPerUser {
			log := logs[gofakeit.Number(0, len(logs)-1)]
			_, err := s.actions.Like(ctx, u.ID, actions.Target{ID: log.ID, Kind: models.TargetRaceLog})
			if !s.tally(&sum.Likes, &sum.Degraded, err) {
				return sum, fmt.Errorf("failed to seed likes: %w", err)
			}
		}
	}
	for _, log := range logs {
		for range opts.CommentsPerLog {
			author := users[gofakeit.Number(0, len(users)-1)]
			_, err := s.actions.Comment(ctx, author.ID, actions.Target{ID: log.ID, Kind: models.TargetRaceLog}, gofakeit.HipsterSentence())
			if !s.tally(&sum.Comments, &sum.Degraded, err) {
				return sum, fmt.Errorf("failed to seed comments: %w", err)
			}
		}
	}

	logger.Log.Info("Seed complete",
		zap.Int("users", sum.Users),
		zap.Int("follows", sum.Follows),
		zap.Int("logs", sum.Logs),
		zap.Int("likes", sum.Likes),
		zap.Int("comments", sum.Comments),
		zap.Int("degraded", sum.Degraded),
	)
	return sum, nil
}

// tally counts a finished action. Duplicate follows and likes from random
// picks are skipped; any other failure stops the run.
func (s *Seeder) tally(count, degraded *int, err error) bool {
	switch {
	case err == nil:
		*count++
	case pipeline.IsDegraded(err):
		*count++
		*degraded++
	case errors.Is(err, apperrors.ErrAlreadyFollowing), errors.Is(err, apperrors.ErrAlreadyLiked):
	default:
		return false
	}
	return true
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]*models.User, error) {
	taken := make(map[string]bool, n)
	users := make([]*models.User, 0, n)
	for len(users) < n {
		username := strings.ToLower(gofakeit.Username())
		if taken[username] {
			username = fmt.Sprintf("%s%d", username, len(users))
		}
		if taken[username] {
			continue
		}
		taken[username] = true

		u := &models.User{
			Username:    username,
			DisplayName: gofakeit.Name(),
			AvatarURL:   "https://cdn.boxd.test/avatars/" + username + ".png",
		}
		if err := s.profiles.CreateUser(ctx, u); err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

func fakeLog() actions.LogInput {
	race := calendar[gofakeit.Number(0, len(calendar)-1)]
	race.Season = gofakeit.Number(2010, 2024)
	race.Series = "Formula 1"

	in := actions.LogInput{
		Race:   race,
		Rating: float64(gofakeit.Number(1, 10)) / 2,
	}
	if gofakeit.Number(0, 2) == 0 {
		review := gofakeit.HipsterSentence()
		in.Review = &review
	}
	return in
}
