package recompute

import (
	"context"
	"time"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
)

// DayInput — отметки за один день тренировки.
type DayInput struct {
	Date   time.Time
	Online bool
	Marks  []models.Mark
}

// SessionPatch — nil-поля не меняются. Marks != nil заменяет все отметки тренировки.
type SessionPatch struct {
	Date   *time.Time
	Online *bool
	Marks  *[]models.Mark
}

func validateMarks(marks []models.Mark) error {
	seen := make(map[int64]struct{}, len(marks))
	for _, m := range marks {
		if m.PlayerID <= 0 {
			return invalid("mark without player")
		}
		if !m.Status.Valid() {
			return invalid("player %d: unknown status %q", m.PlayerID, m.Status)
		}
		if _, ok := seen[m.PlayerID]; ok {
			return invalid("player %d marked twice", m.PlayerID)
		}
		seen[m.PlayerID] = struct{}{}
	}
	return nil
}

// SubmitDay создаёт тренировку на дату или перезаписывает существующую вместе со всеми отметками.
func (s *Service) SubmitDay(ctx context.Context, c *auth.Capability, in DayInput) (models.Session, error) {
	if in.Date.IsZero() {
		return models.Session{}, invalid("session date is required")
	}
	if err := validateMarks(in.Marks); err != nil {
		return models.Session{}, err
	}
	var out models.Session
	_, err := s.mutate(ctx, c, "submit_day", func(ctx context.Context, tx Repo) error {
		sess, err := tx.UpsertSessionByDate(ctx, models.TruncateDay(in.Date), in.Online)
		if err != nil {
			return err
		}
		if err := tx.ReplaceAttendance(ctx, sess.ID, in.Marks); err != nil {
			return err
		}
		out = sess
		return nil
	})
	return out, err
}

func (s *Service) UpdateSession(ctx context.Context, c *auth.Capability, id int64, p SessionPatch) (models.Session, error) {
	if p.Date != nil && p.Date.IsZero() {
		return models.Session{}, invalid("session date is required")
	}
	if p.Marks != nil {
		if err := validateMarks(*p.Marks); err != nil {
			return models.Session{}, err
		}
	}
	var out models.Session
	_, err := s.mutate(ctx, c, "update_session", func(ctx context.Context, tx Repo) error {
		sess, err := tx.GetSession(ctx, id)
		if err != nil {
			return err
		}
		if p.Date != nil {
			sess.Date = models.TruncateDay(*p.Date)
		}
		if p.Online != nil {
			sess.IsOnline = *p.Online
		}
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		if p.Marks != nil {
			if err := tx.ReplaceAttendance(ctx, sess.ID, *p.Marks); err != nil {
				return err
			}
		}
		out = sess
		return nil
	})
	return out, err
}

func (s *Service) DeleteSession(ctx context.Context, c *auth.Capability, id int64) error {
	_, err := s.mutate(ctx, c, "delete_session", func(ctx context.Context, tx Repo) error {
		return tx.DeleteSession(ctx, id)
	})
	return err
}

// ToggleSettled — административная отметка, на балансы не влияет, поэтому без пересчёта.
func (s *Service) ToggleSettled(ctx context.Context, c *auth.Capability, id int64) (models.Session, error) {
	if err := auth.Require(c, auth.ScopeWrite); err != nil {
		return models.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.ToggleSettled(ctx, id)
	if err != nil {
		return models.Session{}, classify(err)
	}
	return sess, nil
}

// RecordPatch — nil-поля не меняются.
type RecordPatch struct {
	PlayerID *int64
	Status   *models.Status
}

func (s *Service) EditRecord(ctx context.Context, c *auth.Capability, id int64, p RecordPatch) (models.AttendanceRecord, error) {
	if p.Status != nil && !p.Status.Valid() {
		return models.AttendanceRecord{}, invalid("unknown status %q", *p.Status)
	}
	if p.PlayerID != nil && *p.PlayerID <= 0 {
		return models.AttendanceRecord{}, invalid("player id must be positive")
	}
	var out models.AttendanceRecord
	_, err := s.mutate(ctx, c, "edit_record", func(ctx context.Context, tx Repo) error {
		rec, err := tx.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		if p.PlayerID != nil {
			rec.PlayerID = *p.PlayerID
		}
		if p.Status != nil {
			rec.Status = *p.Status
		}
		if err := tx.UpdateAttendance(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	return out, err
}

func (s *Service) DeleteRecord(ctx context.Context, c *auth.Capability, id int64) error {
	_, err := s.mutate(ctx, c, "delete_record", func(ctx context.Context, tx Repo) error {
		return tx.DeleteAttendance(ctx, id)
	})
	return err
}

// SessionView — тренировка вместе с отметками, как её показывают в журнале.
type SessionView struct {
	models.Session
	Records []models.AttendanceRecord `json:"records"`
}

// Sessions — все тренировки от новых к старым с отметками.
func (s *Service) Sessions(ctx context.Context) ([]SessionView, error) {
	var h ledger.History
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Repo) error {
		var err error
		if h.Sessions, err = tx.ListSessions(ctx); err != nil {
			return err
		}
		h.Records, err = tx.ListAttendance(ctx)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	byID := make(map[int64][]models.AttendanceRecord, len(h.Sessions))
	for _, r := range h.Records {
		byID[r.SessionID] = append(byID[r.SessionID], r)
	}
	out := make([]SessionView, 0, len(h.Sessions))
	for _, sess := range h.Sessions {
		out = append(out, SessionView{Session: sess, Records: byID[sess.ID]})
	}
	sortSessionsDesc(out)
	return out, nil
}
