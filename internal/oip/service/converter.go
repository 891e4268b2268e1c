package service

import (
	"github.com/jinzhu/copier"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
)

// instanceModelToEntity converts a stored instance into its API view.
func instanceModelToEntity(m *model.Instance) (*entity.Instance, error) {
	e := &entity.Instance{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}
	return e, nil
}

// modelModelToEntity converts a catalog record into its API view.
func modelModelToEntity(m *model.Model) (*entity.Model, error) {
	e := &entity.Model{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}
	return e, nil
}
