// Package library stores named meshes, with the preset they were built
// from, in a SQLite database.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Faultbox/fxmesh/internal/export"
	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// ErrNotFound is returned when no record has the requested name.
var ErrNotFound = errors.New("mesh not found")

// Record is one stored mesh.
type Record struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Fingerprint string    `gorm:"index;size:64"`
	Preset      []byte    // YAML
	Frame       []byte    // export frame
	VertexCount int
	IndexCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LoadPreset decodes the stored preset.
func (r *Record) LoadPreset() (*preset.Preset, error) {
	return preset.Decode(r.Preset, preset.FormatYAML)
}

// Mesh decodes the stored frame.
func (r *Record) Mesh() (*ringmesh.Mesh, error) {
	f, err := export.DecodeFrame(r.Frame)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", r.Name, err)
	}
	return f.Mesh, nil
}

// Library is an open mesh database.
type Library struct {
	db  *gorm.DB
	log *zap.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for store events.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		lib.log = l
	}
}

// Open opens or creates the database at path and migrates its schema.
func Open(path string, opts ...Option) (*Library, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate library: %w", err)
	}

	lib := &Library{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(lib)
	}
	lib.log.Debug("library opened", zap.String("path", path))
	return lib, nil
}

// Save stores m under name, replacing any existing record with that name.
// updated reports whether a record was replaced.
func (l *Library) Save(name string, p *preset.Preset, m *ringmesh.Mesh) (rec *Record, updated bool, err error) {
	data, err := p.Encode(preset.FormatYAML)
	if err != nil {
		return nil, false, err
	}
	fp := p.Fingerprint()

	err = l.db.Transaction(func(tx *gorm.DB) error {
		var existing Record
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = Record{ID: uuid.New(), Name: name}
		case err != nil:
			return err
		default:
			updated = true
		}

		existing.Fingerprint = fp
		existing.Preset = data
		existing.Frame = export.EncodeFrame(name, fp, m)
		existing.VertexCount = m.VertexCount()
		existing.IndexCount = len(m.Indices)

		save := tx.Create
		if updated {
			save = tx.Save
		}
		if err := save(&existing).Error; err != nil {
			return err
		}
		rec = &existing
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to save mesh %q: %w", name, err)
	}

	l.log.Info("mesh stored",
		zap.String("name", name),
		zap.Stringer("id", rec.ID),
		zap.Bool("updated", updated),
		zap.Int("vertices", rec.VertexCount))
	return rec, updated, nil
}

// Get returns the record stored under name.
func (l *Library) Get(name string) (*Record, error) {
	var rec Record
	err := l.db.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh %q: %w", name, err)
	}
	return &rec, nil
}

// List returns every record ordered by name. Frames and presets are not loaded.
func (l *Library) List() ([]Record, error) {
	var recs []Record
	err := l.db.
		Select("id", "name", "fingerprint", "vertex_count", "index_count", "created_at", "updated_at").
		Order("name").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meshes: %w", err)
	}
	return recs, nil
}

// Delete removes the record stored under name.
func (l *Library) Delete(name string) error {
	res := l.db.Where("name = ?", name).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete mesh %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	l.log.Info("mesh deleted", zap.String("name", name))
	return nil
}

// Close releases the database.
func (l *Library) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
