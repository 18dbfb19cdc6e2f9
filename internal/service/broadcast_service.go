package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// statsWindowDays is the length of the daily series returned by Stats
const statsWindowDays = 7

// runScheduler starts detached dispatcher runs
type runScheduler interface {
	Schedule(broadcastID uint)
}

// BroadcastService implements the administrator operations on broadcasts
type BroadcastService struct {
	broadcasts *repository.BroadcastRepository
	users      *repository.UserRepository
	dispatcher runScheduler
	cfg        config.BroadcastConfig
	logger     zerolog.Logger
	now        func() time.Time
}

// NewBroadcastService creates a new BroadcastService
func NewBroadcastService(broadcasts *repository.BroadcastRepository, users *repository.UserRepository, dispatcher runScheduler, cfg config.BroadcastConfig, logger zerolog.Logger) *BroadcastService {
	return &BroadcastService{
		broadcasts: broadcasts,
		users:      users,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With().Str("component", "broadcasts").Logger(),
		now:        time.Now,
	}
}

// CreateBroadcastInput is the body of a broadcast creation.
// SendToAll defaults to true when omitted.
type CreateBroadcastInput struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	SendToAll     *bool  `json:"sendToAll"`
	SpecificUsers []uint `json:"specificUsers"`
}

// Create resolves the target users, stores a pending broadcast with one entry
// per target and schedules its dispatch without waiting for it.
func (s *BroadcastService) Create(ctx context.Context, sender string, input *CreateBroadcastInput) (*model.BroadcastMessage, error) {
	title, content, err := model.ValidateMessageText(input.Title, input.Content, model.MaxBroadcastContentLength)
	if err != nil {
		return nil, invalid(err)
	}

	sendToAll := input.SendToAll == nil || *input.SendToAll
	var targets []uint
	switch {
	case sendToAll:
		targets, err = s.users.FindIDsByRole(model.RoleUser, nil)
	case len(input.SpecificUsers) > 0:
		targets, err = s.users.FindIDsByRole(model.RoleUser, input.SpecificUsers)
	}
	if err != nil {
		return nil, storeError("resolve broadcast targets", err)
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	if sender == "" {
		sender = SenderAdmin
	}
	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = model.DefaultMaxRetries
	}

	b := &model.BroadcastMessage{
		Title:      title,
		Content:    content,
		Sender:     sender,
		Status:     model.BroadcastPending,
		MaxRetries: maxRetries,
	}
	if err := s.broadcasts.Create(ctx, b, targets); err != nil {
		return nil, storeError("create broadcast", err)
	}

	s.logger.Info().
		Uint("broadcast_id", b.ID).
		Str("sender", sender).
		Int("recipients", b.TotalRecipients).
		Msg("broadcast created")
	s.dispatcher.Schedule(b.ID)
	return b, nil
}

// List lists broadcasts newest first, without their entries
func (s *BroadcastService) List(ctx context.Context, filter repository.BroadcastFilter, page, limit int) ([]model.BroadcastMessage, int64, error) {
	broadcasts, total, err := s.broadcasts.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, storeError("list broadcasts", err)
	}
	return broadcasts, total, nil
}

// UserSummary is the public part of a user shown next to a broadcast entry
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// SendDetailView is a broadcast entry with its user resolved.
// User is nil when the account no longer exists.
type SendDetailView struct {
	model.BroadcastSendDetail
	User *UserSummary `json:"user"`
}

// BroadcastDetail is a broadcast with every entry
type BroadcastDetail struct {
	model.BroadcastMessage
	SendDetails []SendDetailView `json:"sendDetails"`
}

// Detail returns a broadcast with every entry and the users behind them
func (s *BroadcastService) Detail(ctx context.Context, id uint) (*BroadcastDetail, error) {
	b, err := s.broadcasts.FindWithDetails(ctx, id)
	if err != nil {
		return nil, storeError("find broadcast", err)
	}

	ids := make([]uint, 0, len(b.SendDetails))
	for _, d := range b.SendDetails {
		ids = append(ids, d.UserID)
	}
	users, err := s.users.FindByIDs(ids)
	if err != nil {
		return nil, storeError("resolve broadcast users", err)
	}

	views := make([]SendDetailView, 0, len(b.SendDetails))
	for _, d := range b.SendDetails {
		view := SendDetailView{BroadcastSendDetail: d}
		if u, ok := users[d.UserID]; ok {
			view.User = &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Name: u.DisplayName()}
		}
		views = append(views, view)
	}

	detail := &BroadcastDetail{BroadcastMessage: *b, SendDetails: views}
	detail.BroadcastMessage.SendDetails = nil
	return detail, nil
}

// Retry puts a failed broadcast back to pending and schedules a new run.
// Entries already sent are kept and not delivered again.
func (s *BroadcastService) Retry(ctx context.Context, id uint) error {
	b, err := s.broadcasts.FindByID(ctx, id)
	if err != nil {
		return storeError("find broadcast", err)
	}
	if b.Status != model.BroadcastFailed {
		return fmt.Errorf("%w: broadcast is %s", ErrInvalidState, b.Status)
	}
	if b.RetryCount >= b.MaxRetries {
		return ErrRetryLimitExceeded
	}

	ok, err := s.broadcasts.ResetForRetry(ctx, id)
	if err != nil {
		return storeError("reset broadcast", err)
	}
	if !ok {
		// lost a race against another retry
		return fmt.Errorf("%w: broadcast changed concurrently", ErrInvalidState)
	}

	s.logger.Info().Uint("broadcast_id", id).Int("retry", b.RetryCount+1).Msg("broadcast retry scheduled")
	s.dispatcher.Schedule(id)
	return nil
}

// DailyBroadcastStats aggregates the broadcasts created on one day
type DailyBroadcastStats struct {
	Date            string  `json:"date"`
	Count           int     `json:"count"`
	TotalRecipients int     `json:"totalRecipients"`
	SuccessRate     float64 `json:"successRate"` // mean of 100 per completed and 0 per other broadcast
}

// BroadcastStats summarizes every broadcast
type BroadcastStats struct {
	TotalBroadcasts     int64                 `json:"totalBroadcasts"`
	PendingBroadcasts   int64                 `json:"pendingBroadcasts"`
	SendingBroadcasts   int64                 `json:"sendingBroadcasts"`
	CompletedBroadcasts int64                 `json:"completedBroadcasts"`
	FailedBroadcasts    int64                 `json:"failedBroadcasts"`
	RecentStats         []DailyBroadcastStats `json:"recentStats"`
}

// Stats counts broadcasts by status and buckets the last seven days by creation day
func (s *BroadcastService) Stats(ctx context.Context) (*BroadcastStats, error) {
	var (
		counts map[model.BroadcastStatus]int64
		recent []model.BroadcastMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if counts, err = s.broadcasts.CountByStatus(gctx); err != nil {
			return storeError("count broadcasts", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = s.broadcasts.FindCreatedSince(gctx, s.now().AddDate(0, 0, -statsWindowDays)); err != nil {
			return storeError("load recent broadcasts", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &BroadcastStats{
		PendingBroadcasts:   counts[model.BroadcastPending],
		SendingBroadcasts:   counts[model.BroadcastSending],
		CompletedBroadcasts: counts[model.BroadcastCompleted],
		FailedBroadcasts:    counts[model.BroadcastFailed],
		RecentStats:         []DailyBroadcastStats{},
	}
	for _, c := range counts {
		stats.TotalBroadcasts += c
	}

	type bucket struct {
		count, recipients, completed int
	}
	buckets := make(map[string]*bucket)
	for _, b := range recent {
		day := b.CreatedAt.Local().Format("2006-01-02")
		bk, ok := buckets[day]
		if !ok {
			bk = &bucket{}
			buckets[day] = bk
		}
		bk.count++
		bk.recipients += b.TotalRecipients
		if b.Status == model.BroadcastCompleted {
			bk.completed++
		}
	}

	for day, bk := range buckets {
		stats.RecentStats = append(stats.RecentStats, DailyBroadcastStats{
			Date:            day,
			Count:           bk.count,
			TotalRecipients: bk.recipients,
			SuccessRate:     100 * float64(bk.completed) / float64(bk.count),
		})
	}
	sort.Slice(stats.RecentStats, func(i, j int) bool {
		return stats.RecentStats[i].Date < stats.RecentStats[j].Date
	})
	return stats, nil
}

// TargetUsers lists the accounts a broadcast can be sent to, optionally filtered
func (s *BroadcastService) TargetUsers(search string, page, limit int) ([]model.User, int64, error) {
	users, total, err := s.users.SearchByRole(model.RoleUser, search, page, limit)
	if err != nil {
		return nil, 0, storeError("search users", err)
	}
	return users, total, nil
}

// RecoverPending schedules every broadcast left pending for longer than grace.
// A dispatch lock keeps this from racing a run started by create or retry.
func (s *BroadcastService) RecoverPending(ctx context.Context, grace time.Duration) (int, error) {
	ids, err := s.broadcasts.FindPendingBefore(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, storeError("find pending broadcasts", err)
	}
	for _, id := range ids {
		s.dispatcher.Schedule(id)
	}
	return len(ids), nil
}
