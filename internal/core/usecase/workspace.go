package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

// Snapshot is an immutable view of the loaded catalog and its assessment overlay.
// Writers replace it wholesale; readers must not modify it.
type Snapshot struct {
	Records  []domain.FieldRecord
	Overlay  map[string]domain.AssessmentStatus
	Details  map[string]domain.Assessment
	LoadedAt time.Time
}

func (s *Snapshot) Field(name string) (domain.FieldRecord, bool) {
	for _, record := range s.Records {
		if record.Name == name {
			return record, true
		}
	}
	return domain.FieldRecord{}, false
}

// Workspace owns the single in-memory snapshot and its load lifecycle.
type Workspace struct {
	fields      ports.FieldSource
	userFields  ports.FieldRepository
	assessments ports.AssessmentRepository
	logger      *slog.Logger
	now         func() time.Time

	loads singleflight.Group

	mu      sync.RWMutex
	state   domain.LoadState
	loadErr error
	snap    *Snapshot
	// pending holds edits applied while a fetch is in flight; nil when no load runs.
	pending []snapshotEdit
}

// snapshotEdit changes next in place and reports whether anything changed. Edits must not
// capture caller state: they are replayed onto a freshly loaded snapshot.
type snapshotEdit func(next *Snapshot) (bool, error)

func NewWorkspace(
	fields ports.FieldSource,
	userFields ports.FieldRepository,
	assessments ports.AssessmentRepository,
	logger *slog.Logger,
) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		fields:      fields,
		userFields:  userFields,
		assessments: assessments,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		state:       domain.LoadStateLoading,
	}
}

// Reload performs a full load. Concurrent callers share one in-flight load.
func (w *Workspace) Reload(ctx context.Context) error {
	_, err, shared := w.loads.Do("workspace", func() (any, error) {
		return nil, w.load(ctx)
	})
	if shared {
		w.logger.Debug("workspace_reload_shared")
	}
	return err
}

func (w *Workspace) load(ctx context.Context) error {
	w.mu.Lock()
	w.state = domain.LoadStateLoading
	w.loadErr = nil
	w.pending = make([]snapshotEdit, 0)
	w.mu.Unlock()

	snap, err := w.fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	pending := w.pending
	w.pending = nil
	if err != nil {
		w.state = domain.LoadStateFailed
		w.loadErr = err
		w.snap = nil
		w.logger.Error("workspace_load_failed", "error", err)
		return err
	}
	// The fetch may predate writes that landed while it ran.
	for _, edit := range pending {
		if _, err := edit(snap); err != nil {
			w.logger.Debug("workspace_edit_replay_skipped", "error", err)
		}
	}
	w.state = domain.LoadStateReady
	w.snap = snap
	w.logger.Info("workspace_loaded", "records", len(snap.Records), "assessments", len(snap.Details))
	return nil
}

func (w *Workspace) fetch(ctx context.Context) (*Snapshot, error) {
	records, err := w.fields.LoadFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("load field catalog: %w", err)
	}

	if w.userFields != nil {
		added, err := w.userFields.ListUserAdded(ctx)
		if err != nil {
			return nil, fmt.Errorf("load user-added fields: %w", err)
		}
		records = mergeFields(records, added, w.logger)
	}

	assessments, err := w.assessments.ListAssessments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	overlay := make(map[string]domain.AssessmentStatus, len(assessments))
	details := make(map[string]domain.Assessment, len(assessments))
	// Most recent first: the first row seen for a name wins.
	for _, a := range assessments {
		if _, seen := details[a.FieldName]; seen {
			continue
		}
		overlay[a.FieldName] = a.Status
		details[a.FieldName] = a
	}

	return &Snapshot{
		Records:  records,
		Overlay:  overlay,
		Details:  details,
		LoadedAt: w.now(),
	}, nil
}

func mergeFields(base, added []domain.FieldRecord, logger *slog.Logger) []domain.FieldRecord {
	names := make(map[string]struct{}, len(base)+len(added))
	out := make([]domain.FieldRecord, 0, len(base)+len(added))
	for _, record := range base {
		names[record.Name] = struct{}{}
		out = append(out, record)
	}
	for _, record := range added {
		if _, dup := names[record.Name]; dup {
			logger.Warn("user_field_shadowed", "field_name", record.Name)
			continue
		}
		names[record.Name] = struct{}{}
		out = append(out, record)
	}
	return out
}

// Snapshot returns the current snapshot or ErrNotLoaded while loading or after a failure.
func (w *Workspace) Snapshot() (*Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.snap != nil {
		return w.snap, nil
	}
	if w.state == domain.LoadStateFailed && w.loadErr != nil {
		return nil, domain.WrapError(domain.ErrNotLoaded, "workspace", w.loadErr)
	}
	return nil, domain.WrapError(domain.ErrNotLoaded, "workspace", fmt.Errorf("state=%s", w.state))
}

func (w *Workspace) Status() domain.WorkspaceStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := domain.WorkspaceStatus{State: w.state}
	if w.loadErr != nil {
		status.Error = w.loadErr.Error()
	}
	if w.snap != nil {
		status.Records = len(w.snap.Records)
		status.Assessments = len(w.snap.Details)
		status.LoadedAt = w.snap.LoadedAt
	}
	return status
}

func (w *Workspace) Field(name string) (domain.FieldRecord, error) {
	snap, err := w.Snapshot()
	if err != nil {
		return domain.FieldRecord{}, err
	}
	record, ok := snap.Field(name)
	if !ok {
		return domain.FieldRecord{}, domain.WrapError(domain.ErrFieldNotFound, "workspace field", fmt.Errorf("name=%s", name))
	}
	return record, nil
}

func (w *Workspace) Assessment(name string) (domain.Assessment, bool) {
	snap, err := w.Snapshot()
	if err != nil {
		return domain.Assessment{}, false
	}
	a, ok := snap.Details[name]
	return a, ok
}

// ApplyAssessment updates the overlay for one field.
func (w *Workspace) ApplyAssessment(a domain.Assessment) error {
	_, err := w.mutate(func(next *Snapshot) (bool, error) {
		next.Overlay = cloneOverlay(next.Overlay)
		next.Details = cloneDetails(next.Details)
		next.Overlay[a.FieldName] = a.Status
		next.Details[a.FieldName] = a
		return true, nil
	})
	return err
}

// RemoveAssessment reverts a field to not_assessed. It reports whether an entry existed.
func (w *Workspace) RemoveAssessment(name string) (bool, error) {
	return w.mutate(func(next *Snapshot) (bool, error) {
		_, inDetails := next.Details[name]
		_, inOverlay := next.Overlay[name]
		if !inDetails && !inOverlay {
			return false, nil
		}
		next.Overlay = cloneOverlay(next.Overlay)
		next.Details = cloneDetails(next.Details)
		delete(next.Overlay, name)
		delete(next.Details, name)
		return true, nil
	})
}

// AppendField adds a record; names must stay unique.
func (w *Workspace) AppendField(record domain.FieldRecord) error {
	_, err := w.mutate(func(next *Snapshot) (bool, error) {
		if _, dup := next.Field(record.Name); dup {
			return false, domain.WrapError(domain.ErrConflict, "append field", fmt.Errorf("field %q already exists", record.Name))
		}
		records := make([]domain.FieldRecord, len(next.Records), len(next.Records)+1)
		copy(records, next.Records)
		next.Records = append(records, record)
		return true, nil
	})
	return err
}

// mutate applies edit to a copy of the current snapshot and swaps it in. While a load is in
// flight the edit is also queued for replay onto the loaded snapshot.
func (w *Workspace) mutate(edit snapshotEdit) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return false, domain.WrapError(domain.ErrNotLoaded, "workspace mutate", fmt.Errorf("state=%s", w.state))
	}
	next := *w.snap
	changed, err := edit(&next)
	if err != nil {
		return false, err
	}
	w.snap = &next
	if w.pending != nil {
		w.pending = append(w.pending, edit)
	}
	return changed, nil
}

func cloneOverlay(in map[string]domain.AssessmentStatus) map[string]domain.AssessmentStatus {
	out := make(map[string]domain.AssessmentStatus, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneDetails(in map[string]domain.Assessment) map[string]domain.Assessment {
	out := make(map[string]domain.Assessment, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
