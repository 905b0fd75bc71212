package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/repositories"
)

// profissionalRepository implements the ProfissionalRepository interface
type profissionalRepository struct {
	db *gorm.DB
}

// NewProfissionalRepository creates a new professional repository
func NewProfissionalRepository(db *gorm.DB) repositories.ProfissionalRepository {
	return &profissionalRepository{db: db}
}

// ListActive returns active professionals, default assignee first, then by name
func (r *profissionalRepository) ListActive(ctx context.Context) ([]*entities.Profissional, error) {
	var profissionais []*entities.Profissional
	err := r.db.WithContext(ctx).
		Where("ativo = ?", true).
		Order("fg_padrao_pendencia DESC").
		Order("nome_completo ASC").
		Find(&profissionais).Error
	if err != nil {
		return nil, err
	}
	return profissionais, nil
}

// FindDefault returns the active professional flagged as default assignee
func (r *profissionalRepository) FindDefault(ctx context.Context) (*entities.Profissional, error) {
	var p entities.Profissional
	err := r.db.WithContext(ctx).
		Where("fg_padrao_pendencia = ? AND ativo = ?", true, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
