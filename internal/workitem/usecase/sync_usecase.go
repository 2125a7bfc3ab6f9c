package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	authrepo "workhub-backend/internal/auth/repository"
	"workhub-backend/internal/workitem/domain"
	"workhub-backend/internal/workitem/repository"
	"workhub-backend/pkg/metrics"

	"go.uber.org/zap"
)

const (
	outcomeSuccess             = "success"
	outcomeNoCredentials       = "no_credentials"
	outcomeProviderUnavailable = "provider_unavailable"
	outcomeFailed              = "failed"
)

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	userRepo   authrepo.UserRepository
	itemRepo   repository.WorkItemRepository
	threadRepo repository.WorkThreadRepository
	adapters   map[authdomain.Provider]domain.ProviderAdapter
	classifier Classifier
	dedup      *DedupGate
	resolver   *ThreadResolver
	logger     *zap.Logger
	now        func() time.Time
}

// NewSyncUsecase creates the orchestrator. Providers without an adapter sync
// zero items.
func NewSyncUsecase(
	userRepo authrepo.UserRepository,
	itemRepo repository.WorkItemRepository,
	threadRepo repository.WorkThreadRepository,
	adapters []domain.ProviderAdapter,
	classifier Classifier,
	logger *zap.Logger,
) SyncUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	byProvider := make(map[authdomain.Provider]domain.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		byProvider[a.Provider()] = a
	}
	return &syncUsecase{
		userRepo:   userRepo,
		itemRepo:   itemRepo,
		threadRepo: threadRepo,
		adapters:   byProvider,
		classifier: classifier,
		dedup:      NewDedupGate(itemRepo),
		resolver:   NewThreadResolver(threadRepo),
		logger:     logger.Named("sync"),
		now:        time.Now,
	}
}

func (u *syncUsecase) SyncGmail(ctx context.Context, userID, overrideToken string) int {
	return u.SyncProvider(ctx, userID, authdomain.ProviderGmail, overrideToken)
}

func (u *syncUsecase) SyncCalendar(ctx context.Context, userID, overrideToken string) int {
	return u.SyncProvider(ctx, userID, authdomain.ProviderCalendar, overrideToken)
}

func (u *syncUsecase) SyncTasks(ctx context.Context, userID, overrideToken string) int {
	return u.SyncProvider(ctx, userID, authdomain.ProviderTasks, overrideToken)
}

func (u *syncUsecase) SyncTeams(ctx context.Context, userID, overrideToken string) int {
	return u.SyncProvider(ctx, userID, authdomain.ProviderTeams, overrideToken)
}

func (u *syncUsecase) SyncAll(ctx context.Context, userID string, opts SyncAllOptions) SyncAllResult {
	result := SyncAllResult{Created: make(map[authdomain.Provider]int, len(authdomain.AllProviders))}
	for _, p := range authdomain.AllProviders {
		created, ran := u.syncGuarded(ctx, userID, p, opts)
		if !ran {
			result.Skipped = append(result.Skipped, p)
			continue
		}
		result.Created[p] = created
		result.Total += created
	}
	return result
}

func (u *syncUsecase) syncGuarded(ctx context.Context, userID string, provider authdomain.Provider, opts SyncAllOptions) (int, bool) {
	if opts.Acquire != nil {
		release, err := opts.Acquire(ctx, provider)
		if err != nil {
			u.logger.Info("skipping provider",
				zap.String("user_id", userID),
				zap.String("provider", string(provider)),
				zap.Error(err))
			return 0, false
		}
		defer release()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return u.SyncProvider(ctx, userID, provider, opts.OverrideTokens[provider]), true
}

func (u *syncUsecase) SyncProvider(ctx context.Context, userID string, provider authdomain.Provider, overrideToken string) (created int) {
	started := u.now()
	log := u.logger.With(zap.String("user_id", userID), zap.String("provider", string(provider)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("sync cycle panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.RecordSyncRun(string(provider), outcomeFailed, 0, u.now().Sub(started))
			created = 0
		}
	}()

	created, outcome, err := u.runCycle(ctx, log, userID, provider, overrideToken)
	switch outcome {
	case outcomeProviderUnavailable:
		log.Warn("provider unavailable, skipping cycle", zap.Error(err))
	case outcomeFailed:
		log.Error("sync cycle failed", zap.Int("created_before_failure", created), zap.Error(err))
	case outcomeNoCredentials:
		log.Debug("no credentials, skipping cycle")
	default:
		log.Info("sync cycle finished", zap.Int("created", created))
	}
	metrics.RecordSyncRun(string(provider), outcome, created, u.now().Sub(started))

	if outcome != outcomeSuccess {
		return 0
	}
	return created
}

// runCycle performs one sync cycle. created counts items committed even when
// the cycle later fails.
func (u *syncUsecase) runCycle(ctx context.Context, log *zap.Logger, userID string, provider authdomain.Provider, overrideToken string) (int, string, error) {
	adapter, ok := u.adapters[provider]
	if !ok {
		return 0, outcomeNoCredentials, nil
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, outcomeFailed, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return 0, outcomeFailed, domain.ErrUserNotFound
	}

	creds, ok := user.Integration(provider).ResolveCredentials(overrideToken, u.now())
	if !ok {
		return 0, outcomeNoCredentials, nil
	}

	candidates, err := adapter.FetchCandidates(ctx, creds)
	if err != nil {
		if domain.IsProviderUnavailable(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return 0, outcomeProviderUnavailable, err
		}
		return 0, outcomeFailed, err
	}

	created := 0
	threadID := ""
	for _, c := range candidates {
		exists, err := u.dedup.Exists(ctx, userID, provider, c.ProviderID)
		if err != nil {
			return created, outcomeFailed, fmt.Errorf("dedup check for %s: %w", c.ProviderID, err)
		}
		if exists {
			continue
		}

		priority := domain.PriorityMedium
		if c.Type == domain.ItemTypeEmail {
			judgment := u.classifier.Classify(ctx, c.Title, c.Sender, c.Preview)
			if !judgment.IsWork {
				log.Debug("skipping non-work email", zap.String("external_id", c.ProviderID), zap.String("reason", judgment.Reason))
				continue
			}
			priority = judgment.Priority
		}

		if threadID == "" {
			threadID, err = u.resolver.ResolveImportThread(ctx, userID)
			if err != nil {
				return created, outcomeFailed, err
			}
		}

		item := materialize(userID, threadID, provider, c, priority)
		if err := u.itemRepo.Create(ctx, item); err != nil {
			return created, outcomeFailed, fmt.Errorf("failed to create item for %s: %w", c.ProviderID, err)
		}
		if err := u.threadRepo.AttachItem(ctx, threadID, item.ID, item.Priority, u.now()); err != nil {
			return created, outcomeFailed, fmt.Errorf("failed to attach item %s: %w", item.ID, err)
		}
		created++
	}

	if err := u.userRepo.UpdateLastSync(ctx, userID, provider, u.now()); err != nil {
		return created, outcomeFailed, fmt.Errorf("failed to stamp last sync: %w", err)
	}
	return created, outcomeSuccess, nil
}

func materialize(userID, threadID string, provider authdomain.Provider, c domain.Candidate, priority domain.Priority) *domain.WorkItem {
	metadata := make(map[string]interface{}, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		metadata[k] = v
	}
	key := provider.MetadataKey()
	metadata[key] = c.ProviderID

	return &domain.WorkItem{
		UserID:      userID,
		ThreadID:    threadID,
		Type:        c.Type,
		Title:       c.Title,
		Source:      c.Source,
		Timestamp:   c.Timestamp,
		Preview:     c.Preview,
		IsRead:      false,
		Priority:    priority,
		Metadata:    metadata,
		ExternalKey: key,
		ExternalID:  c.ProviderID,
	}
}

func (u *syncUsecase) ListItems(ctx context.Context, userID string, limit, offset int) ([]*domain.WorkItem, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.itemRepo.FindByUserID(ctx, userID, limit, offset)
}

func (u *syncUsecase) GetImportThread(ctx context.Context, userID string) (*domain.WorkThread, error) {
	return u.threadRepo.FindByTitle(ctx, userID, domain.ImportThreadTitle)
}

func (u *syncUsecase) IntegrationStatus(ctx context.Context, userID string) (map[authdomain.Provider]IntegrationState, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	status := make(map[authdomain.Provider]IntegrationState, len(authdomain.AllProviders))
	for _, p := range authdomain.AllProviders {
		integ := user.Integration(p)
		status[p] = IntegrationState{Connected: integ.Connected, LastSync: integ.LastSync}
	}
	return status, nil
}
