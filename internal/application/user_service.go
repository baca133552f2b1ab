package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"userhub/internal/domain/entity"
	repo "userhub/internal/domain/repository"
	"userhub/pkg/apperrors"
	"userhub/pkg/events"
	"userhub/pkg/helpers"
)

// Service orchestrates user operations: uniqueness checks, password
// hashing, pagination assembly and soft deletes. Redis, Elasticsearch
// and the event publisher are optional side channels; a nil client
// disables the corresponding behavior without failing requests.
type Service struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Events       *helpers.RabbitPublisher
	CacheTTL     time.Duration
}

func NewService(r repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, pub *helpers.RabbitPublisher, cacheTTL time.Duration) *Service {
	return &Service{
		Repo:         r,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Events:       pub,
		CacheTTL:     cacheTTL,
	}
}

// CreateInput carries a new user request. Shape validation (lengths,
// email format) happens at the HTTP boundary before this layer.
type CreateInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput carries the mutable fields of an existing user.
// Password changes are out of scope for update.
type UpdateInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func viewKey(id int64) string {
	return "user:view:" + strconv.FormatInt(id, 10)
}

// List returns one page of users. An unrecognized direction silently
// falls back to ascending order; the envelope echoes the supplied value.
func (s *Service) List(ctx context.Context, page, size int, sortBy, direction string) (*Page, error) {
	ascending := !strings.EqualFold(direction, "desc")

	users, total, err := s.Repo.FindPage(ctx, page, size, sortBy, ascending)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page{
		Content:     toViewList(users),
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  totalPages,
		Size:        size,
		First:       page == 0,
		Last:        page+1 >= totalPages,
		Sort:        sortBy,
		Direction:   direction,
	}, nil
}

// GetByID returns the user with the given id, active or not.
func (s *Service) GetByID(ctx context.Context, id int64) (*UserView, error) {
	if s.Redis != nil {
		var cached UserView
		if hit, err := helpers.RedisGetJSON(ctx, s.Redis, viewKey(id), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	u, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := toView(u)
	s.cacheView(ctx, &v)
	return &v, nil
}

// Create persists a new user. Username uniqueness is checked before
// email uniqueness; both checks ignore the active flag. The password is
// hashed exactly once, and nothing is persisted unless both checks pass.
func (s *Service) Create(ctx context.Context, in CreateInput) (*UserView, error) {
	existing, err := s.Repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("user", "username", in.Username)
	}

	existing, err = s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("user", "email", in.Email)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &entity.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique constraints in the store backstop the checks above: a
	// concurrent create racing past them surfaces here as ErrDuplicate.
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	v := toView(u)
	s.afterMutation(ctx, u, events.UserCreated)
	return &v, nil
}

// Update overwrites username, email and both names from the request.
// Uniqueness is not re-checked against other records here; a conflicting
// value is rejected by the store's unique constraints instead.
// ID, createdAt, active and the password are never touched.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*UserView, error) {
	u, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Username = in.Username
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}

	v := toView(u)
	s.afterMutation(ctx, u, events.UserUpdated)
	return &v, nil
}

// Delete soft-deletes the user: the record keeps its id, stays fetchable
// and still blocks reuse of its username and email.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	u.Active = false
	u.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Save(ctx, u); err != nil {
		return err
	}

	s.afterMutation(ctx, u, events.UserDeleted)
	return nil
}

func (s *Service) findByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NotFound("user", "id", id)
	}
	return u, nil
}

// afterMutation runs the best-effort side channels: cache refresh,
// search index, lifecycle event. None of them can fail the request.
func (s *Service) afterMutation(ctx context.Context, u *entity.User, eventType string) {
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, viewKey(u.ID))
	}
	_ = s.indexUser(ctx, u)
	s.publishEvent(ctx, u, eventType)
}

func (s *Service) cacheView(ctx context.Context, v *UserView) {
	if s.Redis == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, viewKey(v.ID), v, ttl); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", v.ID).Warn("cache set failed")
	}
}

func (s *Service) publishEvent(ctx context.Context, u *entity.User, eventType string) {
	if s.Events == nil {
		return
	}
	ev := events.UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "type": eventType}).Warn("event publish failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"active":     u.Active,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// Search performs a multi_match query on username, email and names.
// Without a configured Elasticsearch client it returns an empty result.
func (s *Service) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
