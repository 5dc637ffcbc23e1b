package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskflow/modules/notify"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/sanitizer"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// Service implements task operations on top of a Store, emitting live events
// through the publisher as a side effect of each mutation. Event delivery is
// best effort and never fails the operation.
type Service struct {
	store     Store
	publisher notify.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// Option configures the task service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the task service.
func NewService(store Store, publisher notify.Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, persists a new task owned by creatorID, and
// notifies every assignee except the creator.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (*Task, error) {
	in.Title = sanitizer.TrimString(in.Title)
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}

	if err := validator.Apply(
		validator.Required("title", in.Title),
		validator.LenBetween("title", in.Title, 2, 100),
		validator.InList("priority", in.Priority, Priorities),
		validator.NonEmptySlice("assignedToIds", in.AssignedToIDs),
		validator.Rule{
			Check: func() bool { return !in.DueDate.IsZero() },
			Error: validator.ValidationError{Field: "dueDate", Message: "field is required"},
		},
	); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &Task{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Description:   sanitizer.TrimString(in.Description),
		DueDate:       in.DueDate,
		Priority:      in.Priority,
		Status:        StatusToDo,
		CreatorID:     creatorID,
		AssignedToIDs: dedupe(in.AssignedToIDs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	for _, userID := range t.AssignedToIDs {
		if userID == creatorID {
			continue
		}
		s.publisher.Publish(userID, notify.Event{
			Name:    notify.EventTaskAssigned,
			Message: fmt.Sprintf("You have been assigned to task %q.", t.Title),
			Task:    t,
		})
	}

	s.log.InfoContext(ctx, "task created",
		logger.TaskID(t.ID),
		logger.UserID(creatorID),
		slog.Int("assignees", len(t.AssignedToIDs)))

	return t, nil
}

// ByID returns the task if the requester is its creator or an assignee.
func (s *Service) ByID(ctx context.Context, requesterID, taskID string) (*Task, error) {
	t, err := s.store.ByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.IsMember(requesterID) {
		return nil, ErrForbidden
	}
	return t, nil
}

// ForUser lists every task the user created or is assigned to.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Task, error) {
	return s.store.ForUser(ctx, userID)
}

// Filtered lists the user's tasks narrowed by the filter. Matching is exact
// but case-insensitive, so an unknown status or priority simply yields an
// empty result rather than an error.
func (s *Service) Filtered(ctx context.Context, userID string, f Filter) ([]Task, error) {
	tasks, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && !strings.EqualFold(string(t.Status), f.Status) {
			continue
		}
		if f.Priority != "" && !strings.EqualFold(string(t.Priority), f.Priority) {
			continue
		}
		filtered = append(filtered, t)
	}

	switch f.SortBy {
	case "dueDate":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].DueDate.Before(filtered[j].DueDate)
		})
	case "createdAt":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	return filtered, nil
}

// Update applies a patch to the task. Only the creator may update. Assignment
// changes fan out "assigned" events to newly added users; everyone on the new
// assignee list except the requester receives an "updated" event whose
// message reflects the most significant changed field.
func (s *Service) Update(ctx context.Context, requesterID, taskID string, in UpdateInput) (*Task, error) {
	t, err := s.store.ByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.CreatorID != requesterID {
		return nil, ErrForbidden
	}

	var rules []validator.Rule
	if in.Title != nil {
		*in.Title = sanitizer.TrimString(*in.Title)
		rules = append(rules,
			validator.Required("title", *in.Title),
			validator.LenBetween("title", *in.Title, 2, 100),
		)
	}
	if in.Priority != nil {
		rules = append(rules, validator.InList("priority", *in.Priority, Priorities))
	}
	if in.Status != nil {
		rules = append(rules, validator.InList("status", *in.Status, Statuses))
	}
	if in.AssignedToIDs != nil {
		rules = append(rules, validator.NonEmptySlice("assignedToIds", in.AssignedToIDs))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	prevTitle := t.Title
	prevAssignees := t.AssignedToIDs

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = sanitizer.TrimString(*in.Description)
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.AssignedToIDs != nil {
		t.AssignedToIDs = dedupe(in.AssignedToIDs)
	}
	t.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	added, _ := diffAssignees(prevAssignees, t.AssignedToIDs)
	for _, userID := range added {
		if userID == requesterID {
			continue
		}
		s.publisher.Publish(userID, notify.Event{
			Name:    notify.EventTaskAssigned,
			Message: fmt.Sprintf("You have been assigned to task %q.", t.Title),
			Task:    t,
		})
	}

	message := updateMessage(prevTitle, t, in)
	for _, userID := range t.AssignedToIDs {
		if userID == requesterID {
			continue
		}
		s.publisher.Publish(userID, notify.Event{
			Name:    notify.EventTaskUpdated,
			Message: message,
			Task:    t,
		})
	}

	s.log.InfoContext(ctx, "task updated",
		logger.TaskID(t.ID),
		logger.UserID(requesterID))

	return t, nil
}

// Delete removes the task. Only the creator may delete. Assignees other than
// the requester are told the task is gone.
func (s *Service) Delete(ctx context.Context, requesterID, taskID string) error {
	t, err := s.store.ByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.CreatorID != requesterID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, taskID); err != nil {
		return err
	}

	for _, userID := range t.AssignedToIDs {
		if userID == requesterID {
			continue
		}
		s.publisher.Publish(userID, notify.Event{
			Name:    notify.EventTaskDeleted,
			Message: fmt.Sprintf("Task %q has been deleted by the creator.", t.Title),
			TaskID:  t.ID,
		})
	}

	s.log.InfoContext(ctx, "task deleted",
		logger.TaskID(taskID),
		logger.UserID(requesterID))

	return nil
}

// Dashboard aggregates the user's tasks into counters. A task is overdue when
// its due date has passed and it is not completed.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	tasks, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalTasks:   len(tasks),
		StatusCounts: make(map[Status]int, len(Statuses)),
	}
	now := s.now()
	for _, t := range tasks {
		d.StatusCounts[t.Status]++
		if t.Status != StatusCompleted && t.DueDate.Before(now) {
			d.OverdueTasks++
		}
	}
	return d, nil
}

// updateMessage picks the notification text for an update: status wins over
// priority, priority over title, title over the generic fallback. Status and
// priority messages name the task by its pre-update title.
func updateMessage(prevTitle string, t *Task, in UpdateInput) string {
	switch {
	case in.Status != nil:
		return fmt.Sprintf("Task %q status updated to %s.", prevTitle, *in.Status)
	case in.Priority != nil:
		return fmt.Sprintf("Task %q priority changed to %s.", prevTitle, *in.Priority)
	case in.Title != nil:
		return fmt.Sprintf("Task renamed to %q.", t.Title)
	default:
		return fmt.Sprintf("Task %q has been updated.", prevTitle)
	}
}

// diffAssignees returns the ids added to and removed from the assignee set.
func diffAssignees(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}
	for _, id := range next {
		if _, ok := prevSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if _, ok := nextSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// dedupe removes duplicate ids while preserving order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
