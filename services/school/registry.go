// Package school holds the single school configuration printed on certificates.
package school

import (
	"academy/config"
	"academy/errs"
	"academy/models"
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Input carries the fields of a school update. Nil fields are left unchanged.
type Input struct {
	Name                            *string
	LicenseNumber                   *string
	InstructorName                  *string
	InstructorSignature             *string
	BusinessRepresentative          *string
	BusinessRepresentativeSignature *string
	Logo                            *string
	Address                         *string
	Phone                           *string
	Email                           *string
	Website                         *string
	TeachableSchoolID               *string
	TeachableAPIKey                 *string
}

// Registry caches the school row and keeps it in sync with the database.
type Registry struct {
	db  *gorm.DB
	log *zap.Logger

	mu     sync.RWMutex
	school models.School
	loaded bool
}

func NewRegistry(db *gorm.DB, log *zap.Logger) *Registry {
	return &Registry{db: db, log: log}
}

// Current returns the cached school and whether one exists.
func (r *Registry) Current() (models.School, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.school, r.loaded
}

// Load reads the first school row into the cache. A missing row is not an error.
func (r *Registry) Load(ctx context.Context) error {
	var s models.School
	err := r.db.WithContext(ctx).Order("id ASC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.set(models.School{}, false)
		return nil
	}
	if err != nil {
		return err
	}
	r.set(s, true)
	return nil
}

// Seed creates the school from seed when none exists yet, then loads it.
// It reports whether a row was created.
func (r *Registry) Seed(ctx context.Context, seed config.SchoolSeed) (bool, error) {
	if err := r.Load(ctx); err != nil {
		return false, err
	}
	if _, ok := r.Current(); ok {
		return false, nil
	}
	if seed.Name == "" {
		r.log.Warn("school is not configured; certificates cannot be issued until it is")
		return false, nil
	}

	s := models.School{
		Name:                            seed.Name,
		LicenseNumber:                   seed.LicenseNumber,
		InstructorName:                  seed.InstructorName,
		InstructorSignature:             seed.InstructorSignature,
		BusinessRepresentative:          seed.BusinessRepresentative,
		BusinessRepresentativeSignature: seed.BusinessRepSignature,
		Logo:                            seed.Logo,
		Address:                         seed.Address,
		Phone:                           seed.Phone,
		Email:                           seed.Email,
		Website:                         seed.Website,
		TeachableSchoolID:               seed.TeachableSchoolID,
		TeachableAPIKey:                 seed.TeachableAPIKey,
	}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return false, err
	}
	r.set(s, true)
	r.log.Info("school seeded", zap.Uint("schoolId", s.ID), zap.String("name", s.Name))
	if missing := s.MissingCertificateFields(); len(missing) > 0 {
		r.log.Warn("school is missing certificate fields", zap.Strings("missing", missing))
	}
	return true, nil
}

// Update applies in to the school, creating the row if there is none.
func (r *Registry) Update(ctx context.Context, in Input) (models.School, error) {
	if err := r.Load(ctx); err != nil {
		return models.School{}, errs.Wrap(errs.Internal, err, "Failed to fetch school")
	}
	s, exists := r.Current()
	apply(&s, in)
	if s.Name == "" {
		return models.School{}, errs.E(errs.Validation, "School name is required")
	}

	var err error
	if exists {
		err = r.db.WithContext(ctx).Save(&s).Error
	} else {
		err = r.db.WithContext(ctx).Create(&s).Error
	}
	if err != nil {
		return models.School{}, errs.Wrap(errs.Internal, err, "Failed to save school")
	}
	r.set(s, true)
	r.log.Info("school updated", zap.Uint("schoolId", s.ID))
	return s, nil
}

func (r *Registry) set(s models.School, ok bool) {
	r.mu.Lock()
	r.school = s
	r.loaded = ok
	r.mu.Unlock()
}

func apply(s *models.School, in Input) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.Name, in.Name)
	set(&s.LicenseNumber, in.LicenseNumber)
	set(&s.InstructorName, in.InstructorName)
	set(&s.InstructorSignature, in.InstructorSignature)
	set(&s.BusinessRepresentative, in.BusinessRepresentative)
	set(&s.BusinessRepresentativeSignature, in.BusinessRepresentativeSignature)
	set(&s.Logo, in.Logo)
	set(&s.Address, in.Address)
	set(&s.Phone, in.Phone)
	set(&s.Email, in.Email)
	set(&s.Website, in.Website)
	set(&s.TeachableSchoolID, in.TeachableSchoolID)
	set(&s.TeachableAPIKey, in.TeachableAPIKey)
}
