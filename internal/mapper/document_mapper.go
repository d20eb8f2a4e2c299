package mapper

import (
	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:           d.Id,
		UserId:       d.UserId,
		OriginalName: d.OriginalName,
		Filename:     d.Filename,
		Path:         d.Path,
		Size:         d.Size,
		UploadedAt:   d.UploadedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:           d.Id,
		UserId:       d.UserId,
		OriginalName: d.OriginalName,
		Filename:     d.Filename,
		Path:         d.Path,
		Size:         d.Size,
		UploadedAt:   d.UploadedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
