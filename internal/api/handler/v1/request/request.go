// Package request — тела запросов API и их проверка.
package request

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/recompute"
)

var errNotPositive = errors.New("must be positive")

// указатели разыменовываются, nil пропускается: обязательность проверяет Required
func indirect(fn func(v any) error) validation.Rule {
	return validation.By(func(v any) error {
		v, isNil := validation.Indirect(v)
		if isNil {
			return nil
		}
		return fn(v)
	})
}

var (
	positiveID = indirect(func(v any) error {
		if id, ok := v.(int64); ok && id <= 0 {
			return errNotPositive
		}
		return nil
	})
	positiveMoney = indirect(func(v any) error {
		if m, ok := v.(models.Money); ok && m <= 0 {
			return errNotPositive
		}
		return nil
	})
	knownRole = indirect(func(v any) error {
		s, _ := v.(string)
		_, err := models.ParseRole(s)
		return err
	})
	knownStatus = indirect(func(v any) error {
		s, _ := v.(string)
		_, err := models.ParseStatus(s)
		return err
	})
	isDate = validation.Date(models.DateLayout)
)

type LoginRequest struct {
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Password, validation.Required),
	)
}

type PlayerRequest struct {
	Name    string `json:"name"`
	GroupID *int64 `json:"group_id"`
	Role    string `json:"role"`
}

func (req *PlayerRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.GroupID, positiveID),
		validation.Field(&req.Role, validation.Required, knownRole),
	)
}

// Player — игрок для сервиса; роль уже проверена Validate.
func (req *PlayerRequest) Player(id int64) models.Player {
	role, _ := models.ParseRole(req.Role)
	return models.Player{ID: id, Name: strings.TrimSpace(req.Name), GroupID: req.GroupID, Role: role}
}

type MarkRequest struct {
	PlayerID int64  `json:"player_id"`
	Status   string `json:"status"`
}

func (req MarkRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.PlayerID, validation.Required, positiveID),
		validation.Field(&req.Status, validation.Required, knownStatus),
	)
}

func marks(in []MarkRequest) []models.Mark {
	out := make([]models.Mark, 0, len(in))
	for _, m := range in {
		st, _ := models.ParseStatus(m.Status)
		out = append(out, models.Mark{PlayerID: m.PlayerID, Status: st})
	}
	return out
}

// DayRequest — отметки за день: дата, формат и статус каждого игрока.
type DayRequest struct {
	Date   string        `json:"date"`
	Online bool          `json:"online"`
	Marks  []MarkRequest `json:"marks"`
}

func (req *DayRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Date, validation.Required, isDate),
		validation.Field(&req.Marks),
	)
}

func (req *DayRequest) Input() recompute.DayInput {
	d, _ := models.ParseDate(req.Date)
	return recompute.DayInput{Date: d, Online: req.Online, Marks: marks(req.Marks)}
}

type SessionPatchRequest struct {
	Date   *string        `json:"date"`
	Online *bool          `json:"online"`
	Marks  *[]MarkRequest `json:"marks"`
}

func (req *SessionPatchRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Date, isDate),
		validation.Field(&req.Marks),
	)
}

func (req *SessionPatchRequest) Patch() recompute.SessionPatch {
	var p recompute.SessionPatch
	if req.Date != nil {
		d, _ := models.ParseDate(*req.Date)
		p.Date = &d
	}
	p.Online = req.Online
	if req.Marks != nil {
		m := marks(*req.Marks)
		p.Marks = &m
	}
	return p
}

type RecordPatchRequest struct {
	PlayerID *int64  `json:"player_id"`
	Status   *string `json:"status"`
}

func (req *RecordPatchRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PlayerID, positiveID),
		validation.Field(&req.Status, knownStatus),
	)
}

func (req *RecordPatchRequest) Patch() recompute.RecordPatch {
	p := recompute.RecordPatch{PlayerID: req.PlayerID}
	if req.Status != nil {
		st, _ := models.ParseStatus(*req.Status)
		p.Status = &st
	}
	return p
}

type PaymentRequest struct {
	PlayerID int64        `json:"player_id"`
	Amount   models.Money `json:"amount"`
	Date     string       `json:"date"`
	Notes    string       `json:"notes"`
}

func (req *PaymentRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PlayerID, validation.Required, positiveID),
		validation.Field(&req.Amount, validation.Required, positiveMoney),
		validation.Field(&req.Date, isDate),
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}

func (req *PaymentRequest) Input() recompute.PaymentInput {
	var d time.Time
	if req.Date != "" {
		d, _ = models.ParseDate(req.Date)
	}
	return recompute.PaymentInput{PlayerID: req.PlayerID, Amount: req.Amount, Date: d, Notes: req.Notes}
}

type PaymentPatchRequest struct {
	PlayerID *int64        `json:"player_id"`
	Amount   *models.Money `json:"amount"`
	Date     *string       `json:"date"`
	Notes    *string       `json:"notes"`
}

func (req *PaymentPatchRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PlayerID, positiveID),
		validation.Field(&req.Amount, positiveMoney),
		validation.Field(&req.Date, isDate),
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}

func (req *PaymentPatchRequest) Patch() recompute.PaymentPatch {
	p := recompute.PaymentPatch{PlayerID: req.PlayerID, Amount: req.Amount, Notes: req.Notes}
	if req.Date != nil {
		d, _ := models.ParseDate(*req.Date)
		p.Date = &d
	}
	return p
}
