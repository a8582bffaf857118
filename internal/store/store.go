package store

import (
	"gorm.io/gorm"
)

type Store interface {
	Document() Document
	Job() Job
	InitialMigration() error
	Close() error
}

type DataStore struct {
	document Document
	job      Job
	db       *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		document: NewDocumentStore(db),
		job:      NewJobStore(db),
		db:       db,
	}
}

func (s *DataStore) Document() Document {
	return s.document
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) InitialMigration() error {
	return s.document.InitialMigration()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
