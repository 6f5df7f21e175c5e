package repository

import (
	"context"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a certificate. A violation of any of its unique keys
// (user/course, number, verification code) yields ErrDuplicate.
func (r *CertificateRepository) Create(ctx context.Context, c *courseModels.Certificate) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "certificate")
}

func (r *CertificateRepository) GetByID(ctx context.Context, id uint) (*courseModels.Certificate, error) {
	var c courseModels.Certificate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "certificate")
	}
	return &c, nil
}

func (r *CertificateRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*courseModels.Certificate, error) {
	var c courseModels.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "certificate")
	}
	return &c, nil
}

// GetActiveByVerificationCode ignores revoked certificates
func (r *CertificateRepository) GetActiveByVerificationCode(ctx context.Context, code string) (*courseModels.Certificate, error) {
	var c courseModels.Certificate
	err := r.db.WithContext(ctx).
		Where("verification_code = ? AND revoked_at IS NULL", code).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "certificate")
	}
	return &c, nil
}

func (r *CertificateRepository) ListByUser(ctx context.Context, userID uint) ([]courseModels.Certificate, error) {
	var certificates []courseModels.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at desc").
		Find(&certificates).Error
	return certificates, err
}

func (r *CertificateRepository) ListAll(ctx context.Context) ([]courseModels.Certificate, error) {
	var certificates []courseModels.Certificate
	err := r.db.WithContext(ctx).Order("issued_at asc").Find(&certificates).Error
	return certificates, err
}

func (r *CertificateRepository) UpdateAssets(ctx context.Context, id uint, documentURL, imageURL string) error {
	return r.db.WithContext(ctx).Model(&courseModels.Certificate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"document_url": documentURL,
			"image_url":    imageURL,
		}).Error
}

// UpdateDerived stores grade and duration values computed after issuance
func (r *CertificateRepository) UpdateDerived(ctx context.Context, id uint, grade, hours *float64, minutes *int) error {
	updates := map[string]interface{}{}
	if grade != nil {
		updates["grade"] = *grade
	}
	if hours != nil {
		updates["duration_hours"] = *hours
	}
	if minutes != nil {
		updates["duration_minutes"] = *minutes
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&courseModels.Certificate{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *CertificateRepository) Revoke(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&courseModels.Certificate{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}
