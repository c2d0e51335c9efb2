package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/validation"
)

type ProfileService struct {
	profileRepo        repository.ProfileRepository
	defaultCountryCode string
	now                clock
}

func NewProfileService(profileRepo repository.ProfileRepository, defaultCountryCode string) *ProfileService {
	return &ProfileService{
		profileRepo:        profileRepo,
		defaultCountryCode: defaultCountryCode,
		now:                systemClock,
	}
}

// ByUserID returns the stored profile, or an unsaved default one.
func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return &model.Profile{UserID: userID, Timezone: model.DefaultTimezone}, nil
	}
	return profile, err
}

// UpdateProfileInput carries the fields to change. Nil fields are kept.
type UpdateProfileInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	WhatsAppOptIn *bool   `json:"whatsapp_opt_in"`
	Timezone      *string `json:"timezone"`
}

func (s *ProfileService) Update(ctx context.Context, userID string, in UpdateProfileInput) (*model.Profile, error) {
	profile, err := s.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		profile.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != "" {
			if err := validation.ValidateEmail(email); err != nil {
				return nil, err
			}
		}
		profile.Email = email
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			profile.Phone = ""
			profile.WhatsAppOptIn = false
		} else {
			phone, err := validation.NormalizePhone(*in.Phone, s.defaultCountryCode)
			if err != nil {
				return nil, err
			}
			profile.Phone = phone
		}
	}
	if in.WhatsAppOptIn != nil {
		if *in.WhatsAppOptIn && profile.Phone == "" {
			return nil, &validation.Error{Field: "phone", Message: "Agrega tu número para recibir recordatorios por WhatsApp"}
		}
		profile.WhatsAppOptIn = *in.WhatsAppOptIn
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if err := validation.ValidateTimezone(tz); err != nil {
			return nil, err
		}
		if tz == "" {
			tz = model.DefaultTimezone
		}
		profile.Timezone = tz
	}

	now := s.now()
	if profile.ID == "" {
		profile.ID = uuid.New().String()
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Location is the user's time zone, falling back to the default zone when
// the profile cannot be read.
func (s *ProfileService) Location(ctx context.Context, userID string) *time.Location {
	profile, err := s.ByUserID(ctx, userID)
	if err != nil {
		slog.Warn("failed to load profile time zone", "error", err, "user_id", userID)
		return (&model.Profile{}).Location()
	}
	return profile.Location()
}
